package ticket

// Family is the product/service category a ticket belongs to. Adding a
// family is a table change here plus a catalog/config entry, not a new
// code branch.
type Family string

const (
	FamilyBoost   Family = "boost"
	FamilyBot     Family = "bot"
	FamilyNitro   Family = "nitro"
	FamilyAFK     Family = "afk"
	FamilyHWID    Family = "hwid"
	FamilyLobby   Family = "lobby"
	FamilyDesigns Family = "designs"
	FamilySupport Family = "support"
	FamilyReport  Family = "report"
	FamilyPromo   Family = "promo"
)

type FamilyInfo struct {
	// Display is the human-readable service name shown in embeds.
	Display string
	// Prefix is the ticket channel name prefix for this family.
	Prefix string
	// Color is the accent colour for this family's embeds.
	Color int
	// HasMenu reports whether tickets of this family show a package
	// selection menu. Families without one go straight to staff.
	HasMenu bool
}

var families = map[Family]FamilyInfo{
	FamilyBoost:   {Display: "Factory Boosts", Prefix: "purchase-", Color: 0x00D9A3, HasMenu: true},
	FamilyBot:     {Display: "Custom Bot", Prefix: "purchase-", Color: 0x00D9A3, HasMenu: true},
	FamilyNitro:   {Display: "Nitro Token", Prefix: "tokens-", Color: 0x5865F2, HasMenu: true},
	FamilyAFK:     {Display: "AFK Tool", Prefix: "afk-", Color: 0x00D9A3, HasMenu: true},
	FamilyHWID:    {Display: "HWID Reset", Prefix: "hwid-", Color: 0x00D9A3, HasMenu: false},
	FamilyLobby:   {Display: "Bot Lobby Tool", Prefix: "lobby-", Color: 0x9B59B6, HasMenu: false},
	FamilyDesigns: {Display: "Designs", Prefix: "designs-", Color: 0x00D9A3, HasMenu: false},
	FamilySupport: {Display: "Support", Prefix: "support-", Color: 0x00D9A3, HasMenu: false},
	FamilyReport:  {Display: "Report", Prefix: "report-", Color: 0xED4245, HasMenu: false},
	FamilyPromo:   {Display: "Promo", Prefix: "promo-", Color: 0x00D9A3, HasMenu: false},
}

// Info returns the per-family table entry. Unknown families get a
// zero-value entry; ValidFamily should be checked first on external input.
func (f Family) Info() FamilyInfo {
	return families[f]
}

func ValidFamily(s string) bool {
	_, ok := families[Family(s)]
	return ok
}

// Families lists all known families in no particular order.
func Families() []Family {
	out := make([]Family, 0, len(families))
	for f := range families {
		out = append(out, f)
	}
	return out
}
