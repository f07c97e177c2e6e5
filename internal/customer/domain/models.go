package domain

type Customer struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Address       string `json:"address,omitempty"`
	OwnerUsername string `json:"ownerUsername,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// IsPlaceholder reports a synthetic stand-in for a customer that could not be resolved.
func (c Customer) IsPlaceholder() bool {
	return c.ID == 0
}
