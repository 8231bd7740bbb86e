// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/R3E-Network/lab_order/internal/domain"
)

// Call records one request received by a FakeStore.
type Call struct {
	Action string
	Method string
	Body   map[string]any
}

// Failure configures how a FakeStore answers an action.
type Failure struct {
	// Status, when non-zero, is returned as the HTTP status with a plain body.
	Status int
	// Message, when Status is zero, is returned as {"success":false,"error":Message}.
	Message string
	// Raw, when set, is written verbatim with status 200.
	Raw string
}

// FakeStore is an in-memory implementation of the spreadsheet order API.
type FakeStore struct {
	mu       sync.Mutex
	products []domain.Product
	members  []domain.Member
	orders   []domain.Order
	calls    []Call
	failures map[string]Failure
	nextID   int
	server   *httptest.Server
}

// NewFakeStore creates a started fake store. Call Close when done.
func NewFakeStore() *FakeStore {
	f := &FakeStore{
		failures: make(map[string]Failure),
		nextID:   1,
	}
	f.server = httptest.NewServer(f)
	return f
}

// URL returns the endpoint of the fake store.
func (f *FakeStore) URL() string {
	return f.server.URL + "/exec"
}

// Close shuts down the underlying server.
func (f *FakeStore) Close() {
	f.server.Close()
}

// AddProducts seeds the product list.
func (f *FakeStore) AddProducts(products ...domain.Product) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = append(f.products, products...)
}

// AddMembers seeds the member list.
func (f *FakeStore) AddMembers(members ...domain.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members = append(f.members, members...)
}

// AddOrders seeds the order list.
func (f *FakeStore) AddOrders(orders ...domain.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = append(f.orders, orders...)
}

// RemoveProduct deletes a product behind the client's back.
func (f *FakeStore) RemoveProduct(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.products = removeProduct(f.products, id)
}

// Fail makes every subsequent call for action fail as described.
func (f *FakeStore) Fail(action string, failure Failure) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[action] = failure
}

// Recover clears a failure set with Fail.
func (f *FakeStore) Recover(action string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.failures, action)
}

// Calls returns all recorded calls.
func (f *FakeStore) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallsFor returns the recorded calls for action.
func (f *FakeStore) CallsFor(action string) []Call {
	var out []Call
	for _, c := range f.Calls() {
		if c.Action == action {
			out = append(out, c)
		}
	}
	return out
}

// Products returns the stored products.
func (f *FakeStore) Products() []domain.Product {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Product(nil), f.products...)
}

// Members returns the stored members.
func (f *FakeStore) Members() []domain.Member {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Member(nil), f.members...)
}

// Orders returns the stored orders.
func (f *FakeStore) Orders() []domain.Order {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Order(nil), f.orders...)
}

// ServeHTTP implements http.Handler.
func (f *FakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	call := Call{Method: r.Method}
	switch r.Method {
	case http.MethodGet:
		call.Action = r.URL.Query().Get("action")
	case http.MethodPost:
		if err := json.NewDecoder(r.Body).Decode(&call.Body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		call.Action, _ = call.Body["action"].(string)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)

	if failure, ok := f.failures[call.Action]; ok {
		switch {
		case failure.Raw != "":
			_, _ = w.Write([]byte(failure.Raw))
		case failure.Status != 0:
			http.Error(w, http.StatusText(failure.Status), failure.Status)
		default:
			writeJSON(w, map[string]any{"success": false, "error": failure.Message})
		}
		return
	}

	switch call.Action {
	case "getProducts":
		writeJSON(w, map[string]any{"success": true, "data": f.products})
	case "getMembers":
		writeJSON(w, map[string]any{"success": true, "data": f.members})
	case "getOrders":
		writeJSON(w, map[string]any{"success": true, "data": f.orders})
	case "saveProduct":
		p := domain.Product{
			ID:            str(call.Body["id"]),
			Name:          str(call.Body["name"]),
			ShortName:     str(call.Body["short_name"]),
			Manufacturer:  str(call.Body["manufacturer"]),
			CatalogNumber: str(call.Body["catalog_number"]),
			Capacity:      str(call.Body["capacity"]),
			UsagePlace:    str(call.Body["usage_place"]),
			Category:      str(call.Body["category"]),
			ImageURL:      str(call.Body["image_url"]),
		}
		if p.ID == "" {
			p.ID = f.newIDLocked("P")
			f.products = append(f.products, p)
		} else {
			replaced := false
			for i := range f.products {
				if f.products[i].ID == p.ID {
					f.products[i] = p
					replaced = true
				}
			}
			if !replaced {
				writeJSON(w, map[string]any{"success": false, "error": "product not found"})
				return
			}
		}
		writeJSON(w, map[string]any{"success": true, "data": p})
	case "saveMember":
		m := domain.Member{ID: str(call.Body["id"]), Name: str(call.Body["name"]), Email: str(call.Body["email"])}
		if m.ID == "" {
			m.ID = f.newIDLocked("M")
			f.members = append(f.members, m)
		} else {
			for i := range f.members {
				if f.members[i].ID == m.ID {
					f.members[i] = m
				}
			}
		}
		writeJSON(w, map[string]any{"success": true, "data": m})
	case "deleteProduct":
		f.products = removeProduct(f.products, str(call.Body["id"]))
		writeJSON(w, map[string]any{"success": true})
	case "deleteMember":
		id := str(call.Body["id"])
		kept := f.members[:0]
		for _, m := range f.members {
			if m.ID != id {
				kept = append(kept, m)
			}
		}
		f.members = kept
		writeJSON(w, map[string]any{"success": true})
	case "createOrder":
		o := domain.Order{
			ID:          f.newIDLocked("O"),
			OrderNumber: str(call.Body["order_number"]),
			OrderDate:   str(call.Body["order_date"]),
			MemberName:  str(call.Body["member_name"]),
			MemberEmail: str(call.Body["member_email"]),
			Items:       str(call.Body["items"]),
			Notes:       str(call.Body["notes"]),
			Status:      domain.OrderStatus(str(call.Body["status"])),
		}
		f.orders = append(f.orders, o)
		writeJSON(w, map[string]any{"success": true, "data": o})
	default:
		writeJSON(w, map[string]any{"success": false, "error": fmt.Sprintf("unknown action: %s", call.Action)})
	}
}

func (f *FakeStore) newIDLocked(prefix string) string {
	id := fmt.Sprintf("%s%03d", prefix, f.nextID)
	f.nextID++
	return id
}

func removeProduct(products []domain.Product, id string) []domain.Product {
	kept := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	return kept
}

func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
