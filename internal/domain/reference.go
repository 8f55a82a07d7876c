package domain

// Reference entities carry no lifecycle logic; deletes do not cascade.

type Client struct {
	ID          string `json:"id"`
	Name        string `json:"name" validate:"required"`
	ContactName string `json:"contactName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Email       string `json:"email,omitempty"`
	Address     string `json:"address,omitempty"`
	CreatedAt   int64  `json:"createdAt"`
	UpdatedAt   int64  `json:"updatedAt"`
}

type Vessel struct {
	ID           string `json:"id"`
	ClientID     string `json:"clientId" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Registration string `json:"registration,omitempty"`
	Type         string `json:"type,omitempty"`
	Notes        string `json:"notes,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
	UpdatedAt    int64  `json:"updatedAt"`
}

type Equipment struct {
	ID         string `json:"id"`
	ClientID   string `json:"clientId" validate:"required"`
	VesselID   string `json:"vesselId,omitempty"`
	Name       string `json:"name" validate:"required"`
	Model      string `json:"model,omitempty"`
	Serial     string `json:"serial,omitempty"`
	SystemType string `json:"systemType,omitempty"`
	Notes      string `json:"notes,omitempty"`
	CreatedAt  int64  `json:"createdAt"`
	UpdatedAt  int64  `json:"updatedAt"`
}
