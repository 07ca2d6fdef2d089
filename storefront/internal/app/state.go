// Package app holds the storefront's application state and is the only
// place that mutates the cart, the session and the chat history. Every failure is reported
// through the notifier as well as returned.
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"ecommerce-storefront/pkg/pricing"
	"ecommerce-storefront/storefront/internal/assistant"
	"ecommerce-storefront/storefront/internal/cart"
	"ecommerce-storefront/storefront/internal/catalog"
	"ecommerce-storefront/storefront/internal/checkout"
	"ecommerce-storefront/storefront/internal/gateway"
	"ecommerce-storefront/storefront/internal/notify"
	"ecommerce-storefront/storefront/internal/session"
	"ecommerce-storefront/storefront/internal/storage"
)

var (
	ErrNotAdmin      = errors.New("admin access required")
	ErrNotSignedIn   = errors.New("not signed in")
	ErrInvalidStatus = errors.New("unknown order status")
)

// OrderStatuses lists the statuses an admin can assign, in lifecycle order.
var OrderStatuses = []string{"pending", "processing", "shipped", "delivered", "cancelled"}

// API is the subset of the gateway client the storefront uses.
type API interface {
	ListProducts(ctx context.Context, q gateway.ProductQuery) (*gateway.ProductPage, error)
	GetProduct(ctx context.Context, id int64) (*gateway.Product, error)
	ListCategories(ctx context.Context) ([]string, error)
	SignUp(ctx context.Context, email, password string) (*gateway.Session, error)
	Login(ctx context.Context, email, password string) (*gateway.Session, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*gateway.User, error)
	PlaceOrder(ctx context.Context, token string, req gateway.PlaceOrderRequest) (*gateway.Order, error)
	GetOrder(ctx context.Context, token, id string) (*gateway.Order, error)
	ListMyOrders(ctx context.Context, token string, page, pageSize int) (*gateway.OrderPage, error)
	AdminListOrders(ctx context.Context, token string, q gateway.AdminOrderQuery) (*gateway.OrderPage, error)
	UpdateOrderStatus(ctx context.Context, token, id, status string) (*gateway.Order, error)
}

type State struct {
	api      API
	store    storage.Store
	notifier notify.Notifier

	Cart     *cart.Cart
	Session  *session.Holder
	Catalog  *catalog.Catalog
	Chats    *assistant.Book
	checkout *checkout.Sequencer

	mu       sync.Mutex
	snapshot []gateway.Product
}

func New(api API, store storage.Store, notifier notify.Notifier) *State {
	s := &State{
		api:      api,
		store:    store,
		notifier: notifier,
		Cart:     cart.New(store),
		Session:  session.NewHolder(store, api),
		Catalog:  catalog.New(api),
		Chats:    assistant.NewBook(store, nil),
	}
	s.checkout = checkout.NewSequencer(s.Session, s.Cart, api, s.Catalog)
	return s
}

// WithAssistant answers chat questions with asker. Call it before Start.
func (s *State) WithAssistant(asker assistant.Asker) *State {
	s.Chats = assistant.NewBook(s.store, asker)
	return s
}

// describe turns err into a notification description.
func describe(err error) string {
	var apiErr *gateway.APIError
	var stockErr *checkout.InsufficientStockError
	switch {
	case errors.As(err, &stockErr):
		return stockErr.Error()
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, gateway.ErrUnavailable):
		return "The store is unreachable right now. Please try again later."
	case errors.Is(err, checkout.ErrAuthRequired):
		return "Please sign in to check out."
	case errors.Is(err, assistant.ErrNotConfigured):
		return "The shopping assistant is not configured."
	}
	return err.Error()
}

func (s *State) fail(title string, err error) error {
	s.notifier.Notify(notify.Notification{Title: title, Description: describe(err), Destructive: true})
	return err
}

func (s *State) info(title, description string) {
	s.notifier.Notify(notify.Notification{Title: title, Description: description})
}

// Start restores the cart, session and chat mirrors.
func (s *State) Start(ctx context.Context) error {
	if err := s.Session.Load(ctx); err != nil {
		return s.fail("Could not restore session", err)
	}
	if err := s.Cart.Load(ctx); err != nil {
		return s.fail("Could not restore cart", err)
	}
	if err := s.Chats.Load(ctx); err != nil {
		return s.fail("Could not restore chats", err)
	}
	return nil
}

func (s *State) setSnapshot(products []gateway.Product) {
	s.mu.Lock()
	s.snapshot = products
	s.mu.Unlock()
}

// Snapshot returns the last fetched product list.
func (s *State) Snapshot() []gateway.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot
}

func (s *State) Browse(ctx context.Context, f catalog.Filter, sort catalog.Sort, page, pageSize int) (*gateway.ProductPage, error) {
	resp, err := s.Catalog.Products(ctx, f, sort, page, pageSize)
	if err != nil {
		return nil, s.fail("Could not load products", err)
	}
	return resp, nil
}

// LoadAll fetches every product matching f and keeps it as the snapshot used
// by checkout.
func (s *State) LoadAll(ctx context.Context, f catalog.Filter, sort catalog.Sort) ([]gateway.Product, error) {
	products, err := s.Catalog.All(ctx, f, sort)
	if err != nil {
		return nil, s.fail("Could not load products", err)
	}
	s.setSnapshot(products)
	return products, nil
}

func (s *State) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.Catalog.Categories(ctx)
	if err != nil {
		return nil, s.fail("Could not load categories", err)
	}
	return categories, nil
}

func (s *State) product(ctx context.Context, id int64) (gateway.Product, error) {
	p, err := s.api.GetProduct(ctx, id)
	if err != nil {
		return gateway.Product{}, err
	}
	return *p, nil
}

func (s *State) AddToCart(ctx context.Context, productID int64) error {
	p, err := s.product(ctx, productID)
	if err != nil {
		return s.fail("Could not add to cart", err)
	}
	if err := s.Cart.Add(ctx, p); err != nil {
		switch {
		case errors.Is(err, cart.ErrOutOfStock):
			return s.fail("Out of stock", err)
		case errors.Is(err, cart.ErrStockLimit):
			return s.fail("Stock limit reached", err)
		}
		return s.fail("Could not add to cart", err)
	}
	s.info("Added to cart", p.Name)
	return nil
}

func (s *State) SetCartQuantity(ctx context.Context, productID int64, quantity int) error {
	if quantity < 1 {
		return nil
	}
	p, err := s.product(ctx, productID)
	if err != nil {
		return s.fail("Could not update cart", err)
	}
	if err := s.Cart.SetQuantity(ctx, p, quantity); err != nil {
		if errors.Is(err, cart.ErrStockLimit) {
			return s.fail("Stock limit reached", err)
		}
		return s.fail("Could not update cart", err)
	}
	return nil
}

func (s *State) RemoveFromCart(ctx context.Context, productID int64) error {
	if err := s.Cart.Remove(ctx, productID); err != nil {
		return s.fail("Could not update cart", err)
	}
	s.info("Removed from cart", "")
	return nil
}

func (s *State) ClearCart(ctx context.Context) error {
	if err := s.Cart.Clear(ctx); err != nil {
		return s.fail("Could not clear cart", err)
	}
	s.info("Cart cleared", "")
	return nil
}

// CartSummary returns the cart lines with their totals.
func (s *State) CartSummary() ([]cart.Line, pricing.Totals) {
	lines := s.Cart.Items()
	return lines, cart.Totals(lines)
}

func (s *State) SignUp(ctx context.Context, email, password string) error {
	sess, err := s.api.SignUp(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return s.fail("Sign up failed", err)
	}
	if err := s.Session.Login(ctx, sess); err != nil {
		return s.fail("Sign up failed", err)
	}
	s.info("Account created", "Signed in as "+sess.User.Email)
	return nil
}

func (s *State) Login(ctx context.Context, email, password string) error {
	sess, err := s.api.Login(ctx, strings.TrimSpace(email), password)
	if err != nil {
		return s.fail("Sign in failed", err)
	}
	if err := s.Session.Login(ctx, sess); err != nil {
		return s.fail("Sign in failed", err)
	}
	s.info("Signed in", sess.User.Email)
	return nil
}

func (s *State) Logout(ctx context.Context) error {
	if err := s.Session.Logout(ctx); err != nil {
		if errors.Is(err, session.ErrRemoteLogout) {
			return s.fail("Signed out locally", err)
		}
		return s.fail("Sign out failed", err)
	}
	s.info("Signed out", "")
	return nil
}

// WhoAmI re-fetches the signed-in user so a changed admin flag is picked up.
func (s *State) WhoAmI(ctx context.Context) (*gateway.User, error) {
	if !s.Session.IsLoggedIn() {
		return nil, s.fail("Not signed in", ErrNotSignedIn)
	}
	u, err := s.api.CurrentUser(ctx, s.Session.Token())
	if err != nil {
		return nil, s.fail("Could not load account", err)
	}
	if err := s.Session.UpdateUser(ctx, *u); err != nil {
		log.Printf("Storefront: could not store refreshed user: %v", err)
	}
	return u, nil
}

// Checkout places an order for the cart. When no product snapshot has been
// loaded in this process, it fetches one first.
func (s *State) Checkout(ctx context.Context) (*checkout.Confirmation, error) {
	snapshot := s.Snapshot()
	if snapshot == nil && s.Session.IsLoggedIn() && len(s.Cart.Items()) > 0 {
		var err error
		if snapshot, err = s.LoadAll(ctx, catalog.Filter{}, catalog.SortDefault); err != nil {
			return nil, err
		}
	}

	conf, err := s.checkout.Checkout(ctx, snapshot)
	if err != nil {
		var authErr *checkout.AuthRequiredError
		if errors.As(err, &authErr) {
			return nil, s.fail("Sign in required", err)
		}
		return nil, s.fail("Checkout failed", err)
	}

	s.setSnapshot(conf.Products)
	if conf.PricesUpdated {
		s.info("Prices updated", "Cart prices changed since the items were added")
	}
	s.info("Order placed", fmt.Sprintf("Order %s, total %.2f", conf.OrderID, conf.Total))
	if conf.ClearErr != nil {
		s.notifier.Notify(notify.Notification{
			Title:       "Cart not cleared",
			Description: fmt.Sprintf("Order %s was placed but the cart still holds its items. Clear it before checking out again.", conf.OrderID),
			Destructive: true,
		})
	}
	return conf, nil
}

func (s *State) MyOrders(ctx context.Context, page, pageSize int) (*gateway.OrderPage, error) {
	if !s.Session.IsLoggedIn() {
		return nil, s.fail("Not signed in", ErrNotSignedIn)
	}
	orders, err := s.api.ListMyOrders(ctx, s.Session.Token(), page, pageSize)
	if err != nil {
		return nil, s.fail("Could not load orders", err)
	}
	return orders, nil
}

func (s *State) Order(ctx context.Context, id string) (*gateway.Order, error) {
	if !s.Session.IsLoggedIn() {
		return nil, s.fail("Not signed in", ErrNotSignedIn)
	}
	order, err := s.api.GetOrder(ctx, s.Session.Token(), id)
	if err != nil {
		return nil, s.fail("Could not load order", err)
	}
	return order, nil
}

func (s *State) requireAdmin() error {
	if !s.Session.IsLoggedIn() {
		return s.fail("Not signed in", ErrNotSignedIn)
	}
	if !s.Session.IsAdmin() {
		return s.fail("Access denied", ErrNotAdmin)
	}
	return nil
}

func (s *State) AdminOrders(ctx context.Context, q gateway.AdminOrderQuery) (*gateway.OrderPage, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if q.Status != "" && !validStatus(q.Status) {
		return nil, s.fail("Invalid filter", fmt.Errorf("%w: %q", ErrInvalidStatus, q.Status))
	}
	orders, err := s.api.AdminListOrders(ctx, s.Session.Token(), q)
	if err != nil {
		return nil, s.fail("Could not load orders", err)
	}
	return orders, nil
}

func (s *State) AdminSetStatus(ctx context.Context, orderID, status string) (*gateway.Order, error) {
	if err := s.requireAdmin(); err != nil {
		return nil, err
	}
	if !validStatus(status) {
		return nil, s.fail("Invalid status", fmt.Errorf("%w: %q", ErrInvalidStatus, status))
	}
	order, err := s.api.UpdateOrderStatus(ctx, s.Session.Token(), orderID, status)
	if err != nil {
		return nil, s.fail("Could not update order", err)
	}
	s.info("Order updated", fmt.Sprintf("Order %s is now %s", order.ID, order.Status))
	return order, nil
}

func validStatus(status string) bool {
	for _, s := range OrderStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// ChatHistory returns every chat, newest first, starting one when there are
// none.
func (s *State) ChatHistory(ctx context.Context) ([]assistant.Chat, error) {
	if chats := s.Chats.Chats(); len(chats) > 0 {
		return chats, nil
	}
	if _, err := s.Chats.New(ctx, ""); err != nil {
		return nil, s.fail("Could not start a chat", err)
	}
	return s.Chats.Chats(), nil
}

func (s *State) NewChat(ctx context.Context, title string) (assistant.Chat, error) {
	chat, err := s.Chats.New(ctx, title)
	if err != nil {
		return assistant.Chat{}, s.fail("Could not start a chat", err)
	}
	return chat, nil
}

func (s *State) Chat(id string) (assistant.Chat, error) {
	chat, err := s.Chats.Get(id)
	if err != nil {
		return assistant.Chat{}, s.fail("Chat not found", err)
	}
	return chat, nil
}

func (s *State) DeleteChat(ctx context.Context, id string) error {
	if err := s.Chats.Delete(ctx, id); err != nil {
		if errors.Is(err, assistant.ErrChatNotFound) {
			return s.fail("Chat not found", err)
		}
		return s.fail("Could not delete chat", err)
	}
	s.info("Chat deleted", id)
	return nil
}

// Ask puts question to the shopping assistant. A failed answer is still
// recorded in the chat, so the chat is returned with the error.
func (s *State) Ask(ctx context.Context, chatID, question string) (assistant.Chat, error) {
	chat, err := s.Chats.Ask(ctx, chatID, question)
	switch {
	case err == nil:
		return chat, nil
	case errors.Is(err, assistant.ErrChatNotFound):
		return chat, s.fail("Chat not found", err)
	case errors.Is(err, assistant.ErrEmptyQuestion):
		return chat, s.fail("Nothing to ask", err)
	}
	return chat, s.fail("Assistant unavailable", err)
}
