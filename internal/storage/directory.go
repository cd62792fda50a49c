package storage

type Model struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Pair: совместная запись 2–3 моделей, ID составной ("id1-id2[-id3]").
type Pair struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

type Operator struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Responsible struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ModelIDs []string `json:"model_ids"`
}

// Members возвращает состав пары; если список пуст, разбирает составной ID.
func (p Pair) Members() []string {
	if len(p.MemberIDs) > 0 {
		return p.MemberIDs
	}
	return PairMembers(p.ID)
}
