package repository

import (
	"fmt"

	"github.com/hitoshi/taskdesk/internal/access"
)

// scopeFilter はscopeに対応するWHERE句と引数を返す。
// column は絞り込み対象のカラム名（users.team_id、teams.id等）。
// scope.Emptyの場合は呼び出し側でクエリを発行せずに空の結果を返すこと。
func scopeFilter(scope access.Scope, column string, argIndex int) (string, []any) {
	if scope.All {
		return "", nil
	}
	return fmt.Sprintf(" WHERE %s = $%d", column, argIndex), []any{scope.TeamID}
}
