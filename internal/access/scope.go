package access

// Scope は一覧取得時のフィルタ条件を表す。
//
//	All=true   : フィルタなし（管理者）
//	Empty=true : 結果は常に空（チーム未所属の一般ユーザー）
//	それ以外   : team_id = TeamID で絞り込む
type Scope struct {
	All    bool
	Empty  bool
	TeamID string
}

// ListScope はidが一覧取得で参照できる範囲を返す。
func ListScope(id Identity) Scope {
	if id.IsAdmin {
		return Scope{All: true}
	}
	if !id.HasTeam() {
		return Scope{Empty: true}
	}
	return Scope{TeamID: id.TeamID}
}

// Includes はteamIDのリソースがこの範囲に含まれるかを返す。
func (s Scope) Includes(teamID string) bool {
	switch {
	case s.All:
		return true
	case s.Empty:
		return false
	default:
		return s.TeamID == teamID
	}
}
