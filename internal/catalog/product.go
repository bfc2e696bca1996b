// Package catalog defines the product read model and the REST client used to
// talk to the storefront backend. The backend owns all persistence and
// business validation; everything here is a transient client-side mirror.
package catalog

// Sortable product fields. These match the JSON attribute names the backend
// uses, so the list screen can use them directly as sort keys.
const (
	FieldName              = "name"
	FieldTitle             = "title"
	FieldDescription       = "description"
	FieldPrice             = "price"
	FieldAvailableQuantity = "available_quantity"
)

// Product mirrors one product record as served by the backend. The ID is
// opaque and assigned server-side; the local copy can be stale until the next
// fetch.
type Product struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	AvailableQuantity int     `json:"available_quantity"`
}

// ProductFields is the payload for create and update requests. The backend
// assigns and keeps ownership of the ID.
type ProductFields struct {
	Name              string  `json:"name"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Price             float64 `json:"price"`
	AvailableQuantity int     `json:"available_quantity"`
}

// User is the profile blob returned by the backend on registration.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Credentials is the bearer token plus profile issued on registration.
// It is persisted by the session store and attached to subsequent requests.
type Credentials struct {
	AccessToken string `json:"access_token"`
	User        User   `json:"user"`
}
