package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/hitoshi/focusez/internal/middleware"
	"github.com/hitoshi/focusez/internal/model"
)

// maxBodyBytes はリクエストボディの上限。キャプチャでHTMLを受け取るため大きめにする。
const maxBodyBytes = 2 << 20

// writeJSON はステータスコードとJSONボディを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

// decodeJSON はリクエストボディをvにデコードする。
// 失敗した場合はINVALID_REQUESTを書き込みfalseを返す。
// 空ボディはallowEmptyがtrueのときだけ許可する。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil || (allowEmpty && errors.Is(err, io.EOF)) {
		return true
	}
	middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
	return false
}
