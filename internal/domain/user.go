package domain

import "encoding/json"

// User is the shopper identity carried by the session token and refreshed by
// profile updates.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role,omitempty"`
}

// UnmarshalJSON accepts the token claim and profile shapes: the id may be
// "_id", "id" or "userId".
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		MongoID ID     `json:"_id"`
		ID      ID     `json:"id"`
		UserID  ID     `json:"userId"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Phone   string `json:"phone"`
		Role    string `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*u = User{Name: raw.Name, Email: raw.Email, Phone: raw.Phone, Role: raw.Role}
	for _, id := range []ID{raw.MongoID, raw.ID, raw.UserID} {
		if id != "" {
			u.ID = string(id)
			break
		}
	}
	return nil
}

// Merge overlays the non-empty fields of o onto u.
func (u User) Merge(o User) User {
	if o.ID != "" {
		u.ID = o.ID
	}
	if o.Name != "" {
		u.Name = o.Name
	}
	if o.Email != "" {
		u.Email = o.Email
	}
	if o.Phone != "" {
		u.Phone = o.Phone
	}
	if o.Role != "" {
		u.Role = o.Role
	}
	return u
}

// Credentials are posted to the login endpoint.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// ProfileUpdate is a partial profile change.
type ProfileUpdate struct {
	Name  string `json:"name,omitempty" validate:"omitempty,max=100"`
	Email string `json:"email,omitempty" validate:"omitempty,email"`
	Phone string `json:"phone,omitempty" validate:"omitempty,max=30"`
}
