package ticket

import "time"

type Status string

const (
	StatusOpen   Status = "open"
	StatusClosed Status = "closed"
)

// Ticket is one customer-scoped purchase/support session backed by a
// Discord channel and a persisted record.
type Ticket struct {
	ID        int       `json:"id" bson:"id"`
	ChannelID string    `json:"channel_id" bson:"channel_id"`
	UserID    string    `json:"user_id" bson:"user_id"`
	Username  string    `json:"username" bson:"username"`
	Family    Family    `json:"family" bson:"family"`
	Status    Status    `json:"status" bson:"status"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ClosedAt  time.Time `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
	Details   Details   `json:"details" bson:"details"`
}

// Details holds the per-family order fields. Which fields are set is
// driven by the catalog option that was selected, so a boost ticket
// carries quantity+duration while a bot ticket carries only a type.
type Details struct {
	Package  string            `json:"package,omitempty" bson:"package,omitempty"`
	Price    string            `json:"price,omitempty" bson:"price,omitempty"`
	Quantity int               `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Duration string            `json:"duration,omitempty" bson:"duration,omitempty"`
	BotType  string            `json:"bot_type,omitempty" bson:"bot_type,omitempty"`
	Form     map[string]string `json:"form,omitempty" bson:"form,omitempty"`
}

// Merge overlays the set fields of other onto d. Zero-valued fields in
// other leave the existing value untouched; form fields merge per key.
func (d *Details) Merge(other Details) {
	if other.Package != "" {
		d.Package = other.Package
	}
	if other.Price != "" {
		d.Price = other.Price
	}
	if other.Quantity != 0 {
		d.Quantity = other.Quantity
	}
	if other.Duration != "" {
		d.Duration = other.Duration
	}
	if other.BotType != "" {
		d.BotType = other.BotType
	}
	if len(other.Form) > 0 {
		if d.Form == nil {
			d.Form = make(map[string]string, len(other.Form))
		}
		for k, v := range other.Form {
			d.Form[k] = v
		}
	}
}

// Option is one purchasable catalog entry. Loaded from config at
// startup, read-only afterwards.
type Option struct {
	Value       string `json:"value"`
	Label       string `json:"label"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Quantity    int    `json:"quantity,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Details converts the option into the detail fields it contributes to
// a ticket.
func (o Option) Details() Details {
	return Details{
		Package:  o.Label,
		Price:    o.Price,
		Quantity: o.Quantity,
		Duration: o.Duration,
		BotType:  o.Type,
	}
}

// Catalog maps each family to its ordered option list.
type Catalog map[Family][]Option

// Find returns the option with the given value in the family's set, or
// nil if the family has no such option.
func (c Catalog) Find(f Family, value string) *Option {
	for i := range c[f] {
		if c[f][i].Value == value {
			return &c[f][i]
		}
	}
	return nil
}
