package constants

// Sites: сайты, по которым ведутся токены и бонусы смены.
var Sites = []string{
	"Stripchat",
	"Chaturbate",
	"Cam4",
	"Livejasmin",
	"My.club",
	"Camsoda",
	"Crypto",
}

var siteSet = func() map[string]bool {
	m := make(map[string]bool, len(Sites))
	for _, s := range Sites {
		m[s] = true
	}
	return m
}()

func IsSite(name string) bool {
	return siteSet[name]
}

// Роли пользователей.
const (
	RoleOwner       = "owner"
	RoleOperator    = "operator"
	RoleResponsible = "responsible"
)
