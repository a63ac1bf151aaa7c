package todo

import (
	"slices"

	"github.com/hitoshi/focusez/internal/model"
)

// SortForDisplay は表示順に並べ替えたコピーを返す。入力は変更しない。
//
// 優先度ランク（urgent, high, medium, low）の昇順に並べ、同じ優先度で
// 両方に期限がある場合だけ期限の早い順にする。それ以外の同順位は元の順序を保つ。
//
// 期限なしのタスクはどのタスクとも同順位として扱うため、同じ優先度に期限ありと
// 期限なしが混在すると順序関係は推移的にならない。その場合の結果は入力順と
// 安定ソートの挙動で決まり、期限ありのタスク同士が期限順に並ぶとは限らない。
func SortForDisplay(todos []model.Todo) []model.Todo {
	sorted := slices.Clone(todos)
	slices.SortStableFunc(sorted, compareForDisplay)
	return sorted
}

func compareForDisplay(a, b model.Todo) int {
	if ra, rb := a.Priority.Rank(), b.Priority.Rank(); ra != rb {
		return ra - rb
	}
	if a.Deadline != nil && b.Deadline != nil {
		return a.Deadline.Compare(*b.Deadline)
	}
	return 0
}
