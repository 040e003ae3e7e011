package devserver

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"suju/storefront/internal/models"
	"suju/storefront/internal/security"
)

// rejection is a business-rule failure: it travels to the client as an
// envelope with a non-200 code and a user-facing message.
type rejection struct {
	code    int
	message string
}

func (r rejection) Error() string { return r.message }

func reject(code int, format string, args ...any) error {
	return rejection{code: code, message: fmt.Sprintf(format, args...)}
}

type userRecord struct {
	models.User
	passwordHash []byte
}

type orderRecord struct {
	models.OrderDetail
	userID int64
}

// Store holds the whole backend state in memory behind one mutex. The
// dev server exists for local development and tests, so simplicity
// beats scalability here.
type Store struct {
	mu     sync.Mutex
	lastID int64

	users         []*userRecord
	categories    []models.Category
	products      map[int64]*models.ProductDetail
	productIDs    []int64
	carts         map[int64][]*models.CartItem
	orders        map[int64]*orderRecord
	orderIDs      []int64
	addresses     map[int64][]*models.Address
	notifications map[int64][]*models.Notification
	favorites     map[int64]map[int64]*models.Favorite
	reviews       map[int64][]*models.Review
	refunds       map[int64]*models.Refund
	refundByOrder map[int64]int64
}

func NewStore() *Store {
	return &Store{
		products:      map[int64]*models.ProductDetail{},
		carts:         map[int64][]*models.CartItem{},
		orders:        map[int64]*orderRecord{},
		addresses:     map[int64][]*models.Address{},
		notifications: map[int64][]*models.Notification{},
		favorites:     map[int64]map[int64]*models.Favorite{},
		reviews:       map[int64][]*models.Review{},
		refunds:       map[int64]*models.Refund{},
		refundByOrder: map[int64]int64{},
	}
}

func (s *Store) nextID() int64 {
	s.lastID++
	return s.lastID
}

func statusText(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusPending:
		return "awaiting payment"
	case models.OrderStatusPaid:
		return "awaiting shipment"
	case models.OrderStatusShipped:
		return "in transit"
	case models.OrderStatusCompleted:
		return "completed"
	case models.OrderStatusCancelled:
		return "cancelled"
	case models.OrderStatusRefunded:
		return "refunded"
	}
	return "unknown"
}

// ---- users ----

func (s *Store) Register(username, email, password, phone string) (models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == username || u.Email == email {
			return models.User{}, reject(400, "username or email already exists")
		}
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	user := &userRecord{
		User: models.User{
			ID:        s.nextID(),
			Username:  username,
			Email:     email,
			Phone:     phone,
			CreatedAt: time.Now(),
		},
		passwordHash: hash,
	}
	s.users = append(s.users, user)
	return user.User, nil
}

func (s *Store) Authenticate(account, password string) (models.User, error) {
	account = strings.TrimSpace(account)

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Username == account || u.Email == strings.ToLower(account) {
			ok, err := security.VerifyPassword(password, u.passwordHash)
			if err != nil || !ok {
				break
			}
			return u.User, nil
		}
	}
	return models.User{}, reject(400, "invalid account or password")
}

func (s *Store) User(id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findUser(id)
	if u == nil {
		return models.User{}, reject(404, "user not found")
	}
	return u.User, nil
}

func (s *Store) findUser(id int64) *userRecord {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

type UserUpdate struct {
	Username  string
	AvatarURL string
	Phone     string
}

func (s *Store) UpdateUser(id int64, update UserUpdate) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(id)
	if u == nil {
		return models.User{}, reject(404, "user not found")
	}
	if update.Username != "" && update.Username != u.Username {
		for _, other := range s.users {
			if other.ID != id && other.Username == update.Username {
				return models.User{}, reject(400, "username already taken")
			}
		}
		u.Username = update.Username
	}
	if update.AvatarURL != "" {
		u.AvatarURL = update.AvatarURL
	}
	if update.Phone != "" {
		u.Phone = update.Phone
	}
	return u.User, nil
}

func (s *Store) ChangePassword(id int64, oldPassword, newPassword string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(id)
	if u == nil {
		return reject(404, "user not found")
	}
	ok, err := security.VerifyPassword(oldPassword, u.passwordHash)
	if err != nil || !ok {
		return reject(400, "old password is incorrect")
	}
	if len(newPassword) < 6 {
		return reject(400, "password must be at least 6 characters")
	}
	hash, err := security.HashPassword(newPassword)
	if err != nil {
		return err
	}
	u.passwordHash = hash
	return nil
}

// ---- cart ----

func (s *Store) Cart(userID int64) models.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartLocked(userID)
}

func (s *Store) cartLocked(userID int64) models.Cart {
	cart := models.Cart{Items: []models.CartItem{}}
	for _, item := range s.carts[userID] {
		cart.Items = append(cart.Items, *item)
		cart.TotalCount += item.Quantity
		cart.TotalAmount += item.Subtotal
	}
	return cart
}

func (s *Store) AddCartItem(userID, productID int64, quantity int) (models.Cart, error) {
	if quantity < 1 {
		return models.Cart{}, reject(400, "quantity must be at least 1")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok || !product.IsPublished {
		return models.Cart{}, reject(404, "product not found")
	}

	for _, item := range s.carts[userID] {
		if item.Product.ID == productID {
			merged := item.Quantity + quantity
			if merged > product.Stock {
				return models.Cart{}, reject(400, "insufficient stock")
			}
			item.Quantity = merged
			item.Subtotal = float64(merged) * item.Product.Price
			return s.cartLocked(userID), nil
		}
	}

	if quantity > product.Stock {
		return models.Cart{}, reject(400, "insufficient stock")
	}

	item := &models.CartItem{
		ID: s.nextID(),
		Product: models.CartProduct{
			ID:           product.ID,
			Name:         product.Name,
			Price:        product.Price,
			MainImageURL: product.MainImageURL,
			Stock:        product.Stock,
		},
		Quantity: quantity,
		Subtotal: float64(quantity) * product.Price,
		AddedAt:  time.Now(),
	}
	s.carts[userID] = append(s.carts[userID], item)
	return s.cartLocked(userID), nil
}

func (s *Store) UpdateCartItem(userID, itemID int64, quantity int) (models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.carts[userID] {
		if item.ID == itemID {
			if quantity < 1 {
				return models.Cart{}, reject(400, "quantity must be at least 1")
			}
			product, ok := s.products[item.Product.ID]
			if ok && quantity > product.Stock {
				return models.Cart{}, reject(400, "insufficient stock")
			}
			item.Quantity = quantity
			item.Subtotal = float64(quantity) * item.Product.Price
			return s.cartLocked(userID), nil
		}
	}
	return models.Cart{}, reject(404, "cart item not found")
}

func (s *Store) RemoveCartItem(userID, itemID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.carts[userID]
	for i, item := range items {
		if item.ID == itemID {
			s.carts[userID] = append(items[:i], items[i+1:]...)
			return nil
		}
	}
	return reject(404, "cart item not found")
}

func (s *Store) ClearCart(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}

// ---- addresses ----

func (s *Store) Addresses(userID int64) []models.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Address{}
	for _, a := range s.addresses[userID] {
		out = append(out, *a)
	}
	return out
}

func (s *Store) CreateAddress(userID int64, address models.Address) models.Address {
	s.mu.Lock()
	defer s.mu.Unlock()

	address.ID = s.nextID()
	address.CreatedAt = time.Now()
	if address.IsDefault || len(s.addresses[userID]) == 0 {
		address.IsDefault = true
		for _, a := range s.addresses[userID] {
			a.IsDefault = false
		}
	}
	stored := address
	s.addresses[userID] = append(s.addresses[userID], &stored)
	return address
}

func (s *Store) UpdateAddress(userID, id int64, update models.Address) (models.Address, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.addresses[userID] {
		if a.ID == id {
			update.ID = a.ID
			update.CreatedAt = a.CreatedAt
			if update.IsDefault {
				for _, other := range s.addresses[userID] {
					other.IsDefault = false
				}
			}
			*a = update
			return *a, nil
		}
	}
	return models.Address{}, reject(404, "address not found")
}

func (s *Store) DeleteAddress(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addresses := s.addresses[userID]
	for i, a := range addresses {
		if a.ID == id {
			s.addresses[userID] = append(addresses[:i], addresses[i+1:]...)
			return nil
		}
	}
	return reject(404, "address not found")
}

// ---- orders ----

func generateOrderNumber() string {
	return "SJ" + strings.ToUpper(ksuid.New().String())
}

func (s *Store) CreateOrder(userID int64, cartItemIDs []int64, addressID int64, paymentMethod, note string) (models.OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := map[int64]bool{}
	for _, id := range cartItemIDs {
		wanted[id] = true
	}

	var picked []*models.CartItem
	for _, item := range s.carts[userID] {
		if wanted[item.ID] {
			picked = append(picked, item)
		}
	}
	if len(picked) == 0 {
		return models.OrderDetail{}, reject(400, "no cart items selected")
	}

	var shipping *models.ShippingAddress
	for _, a := range s.addresses[userID] {
		if a.ID == addressID {
			shipping = &models.ShippingAddress{
				RecipientName: a.RecipientName,
				Phone:         a.Phone,
				Province:      a.Province,
				City:          a.City,
				District:      a.District,
				DetailAddress: a.DetailAddress,
			}
			break
		}
	}
	if shipping == nil {
		return models.OrderDetail{}, reject(400, "shipping address not found")
	}

	// Stock check first so a failed order leaves everything untouched.
	for _, item := range picked {
		product, ok := s.products[item.Product.ID]
		if !ok || product.Stock < item.Quantity {
			return models.OrderDetail{}, reject(400, "insufficient stock for %s", item.Product.Name)
		}
	}

	now := time.Now()
	order := &orderRecord{userID: userID}
	order.ID = s.nextID()
	order.OrderNumber = generateOrderNumber()
	order.Status = models.OrderStatusPending
	order.StatusText = statusText(order.Status)
	order.PaymentMethod = paymentMethod
	order.ShippingAddress = shipping
	order.Note = note
	order.CreatedAt = now
	order.Timelines = []models.Timeline{{
		Status:     "created",
		StatusText: "order created",
		Time:       now,
	}}

	for _, item := range picked {
		product := s.products[item.Product.ID]
		product.Stock -= item.Quantity
		product.SalesCount += item.Quantity

		order.Items = append(order.Items, models.OrderItem{
			ID:           s.nextID(),
			ProductID:    item.Product.ID,
			ProductName:  item.Product.Name,
			ProductImage: item.Product.MainImageURL,
			UnitPrice:    item.Product.Price,
			Quantity:     item.Quantity,
			Subtotal:     item.Subtotal,
		})
		order.TotalAmount += item.Subtotal
	}

	// Consume the ordered items; unselected ones stay in the cart.
	var remaining []*models.CartItem
	for _, item := range s.carts[userID] {
		if !wanted[item.ID] {
			remaining = append(remaining, item)
		}
	}
	s.carts[userID] = remaining

	s.orders[order.ID] = order
	s.orderIDs = append(s.orderIDs, order.ID)
	return order.OrderDetail, nil
}

func (s *Store) Orders(userID int64, status models.OrderStatus, page, pageSize int) models.Page[models.OrderSummary] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.OrderSummary
	for i := len(s.orderIDs) - 1; i >= 0; i-- {
		order := s.orders[s.orderIDs[i]]
		if order.userID != userID {
			continue
		}
		if status != "" && order.Status != status {
			continue
		}
		all = append(all, order.OrderSummary)
	}

	return paginate(all, page, pageSize)
}

func (s *Store) Order(userID, id int64) (models.OrderDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orderLocked(userID, id)
	if err != nil {
		return models.OrderDetail{}, err
	}
	return order.OrderDetail, nil
}

func (s *Store) orderLocked(userID, id int64) (*orderRecord, error) {
	order, ok := s.orders[id]
	if !ok || (userID != 0 && order.userID != userID) {
		return nil, reject(404, "order not found")
	}
	return order, nil
}

func (s *Store) PayOrder(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orderLocked(userID, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusPending {
		return reject(400, "order cannot be paid in status %q", order.Status)
	}

	now := time.Now()
	order.Status = models.OrderStatusPaid
	order.StatusText = statusText(order.Status)
	order.PaidAt = &now
	order.Timelines = append(order.Timelines, models.Timeline{
		Status:     string(models.OrderStatusPaid),
		StatusText: "payment received",
		Time:       now,
	})
	s.pushLocked(order.userID, "order", "Payment received",
		fmt.Sprintf("Order %s has been paid.", order.OrderNumber), order.ID)
	return nil
}

func (s *Store) CancelOrder(userID, id int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orderLocked(userID, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusPending {
		return reject(400, "order cannot be cancelled in status %q", order.Status)
	}

	s.restockLocked(order)

	now := time.Now()
	order.Status = models.OrderStatusCancelled
	order.StatusText = statusText(order.Status)
	order.Timelines = append(order.Timelines, models.Timeline{
		Status:      string(models.OrderStatusCancelled),
		StatusText:  "order cancelled",
		Time:        now,
		Description: reason,
	})
	return nil
}

// ShipOrder is the admin-only transition.
func (s *Store) ShipOrder(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orderLocked(0, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusPaid {
		return reject(400, "order cannot be shipped in status %q", order.Status)
	}

	now := time.Now()
	order.Status = models.OrderStatusShipped
	order.StatusText = statusText(order.Status)
	order.ShippedAt = &now
	order.Timelines = append(order.Timelines, models.Timeline{
		Status:     string(models.OrderStatusShipped),
		StatusText: "order shipped",
		Time:       now,
	})
	s.pushLocked(order.userID, "order", "Order shipped",
		fmt.Sprintf("Order %s is on its way.", order.OrderNumber), order.ID)
	return nil
}

func (s *Store) ConfirmOrder(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orderLocked(userID, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusShipped {
		return reject(400, "order cannot be confirmed in status %q", order.Status)
	}

	now := time.Now()
	order.Status = models.OrderStatusCompleted
	order.StatusText = statusText(order.Status)
	order.CompletedAt = &now
	order.Timelines = append(order.Timelines, models.Timeline{
		Status:     string(models.OrderStatusCompleted),
		StatusText: "order completed",
		Time:       now,
	})
	return nil
}

func (s *Store) RequestRefund(userID, id int64, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, err := s.orderLocked(userID, id)
	if err != nil {
		return err
	}
	if order.Status != models.OrderStatusPaid {
		return reject(400, "refund can only be requested for paid orders")
	}
	if _, exists := s.refundByOrder[order.ID]; exists {
		return reject(400, "refund already requested for this order")
	}

	refund := &models.Refund{
		ID:           s.nextID(),
		OrderID:      order.ID,
		Status:       models.RefundStatusPending,
		RefundAmount: order.TotalAmount,
		Reason:       reason,
		CreatedAt:    time.Now(),
	}
	s.refunds[refund.ID] = refund
	s.refundByOrder[order.ID] = refund.ID
	return nil
}

func (s *Store) Refunds(status models.RefundStatus) []models.Refund {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Refund{}
	for _, r := range s.refunds {
		if status == "" || r.Status == status {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ApproveRefund(id int64, adminNotes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refund, ok := s.refunds[id]
	if !ok {
		return reject(404, "refund not found")
	}
	if refund.Status != models.RefundStatusPending {
		return reject(400, "refund already decided")
	}

	order := s.orders[refund.OrderID]
	if order == nil || order.Status != models.OrderStatusPaid {
		return reject(400, "order is no longer refundable")
	}

	refund.Status = models.RefundStatusApproved
	refund.AdminNotes = adminNotes
	s.restockLocked(order)

	now := time.Now()
	order.Status = models.OrderStatusRefunded
	order.StatusText = statusText(order.Status)
	order.Timelines = append(order.Timelines, models.Timeline{
		Status:      string(models.OrderStatusRefunded),
		StatusText:  "refund approved",
		Time:        now,
		Description: refund.Reason,
	})
	s.pushLocked(order.userID, "refund", "Refund approved",
		fmt.Sprintf("Refund for order %s has been approved.", order.OrderNumber), order.ID)
	return nil
}

func (s *Store) RejectRefund(id int64, adminNotes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	refund, ok := s.refunds[id]
	if !ok {
		return reject(404, "refund not found")
	}
	if refund.Status != models.RefundStatusPending {
		return reject(400, "refund already decided")
	}

	refund.Status = models.RefundStatusRejected
	refund.AdminNotes = adminNotes
	delete(s.refundByOrder, refund.OrderID)

	if order := s.orders[refund.OrderID]; order != nil {
		s.pushLocked(order.userID, "refund", "Refund rejected",
			fmt.Sprintf("Refund for order %s has been rejected.", order.OrderNumber), order.ID)
	}
	return nil
}

func (s *Store) restockLocked(order *orderRecord) {
	for _, item := range order.Items {
		if product, ok := s.products[item.ProductID]; ok {
			product.Stock += item.Quantity
			product.SalesCount -= item.Quantity
		}
	}
}

// ---- notifications ----

func (s *Store) pushLocked(userID int64, typ, title, content string, relatedID int64) {
	related := relatedID
	s.notifications[userID] = append(s.notifications[userID], &models.Notification{
		ID:        s.nextID(),
		Type:      typ,
		Title:     title,
		Content:   content,
		RelatedID: &related,
		CreatedAt: time.Now(),
	})
}

func (s *Store) Notifications(userID int64, page, pageSize int) models.Page[models.Notification] {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.notifications[userID]
	all := make([]models.Notification, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		all = append(all, *list[i])
	}
	return paginate(all, page, pageSize)
}

func (s *Store) UnreadCount(userID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications[userID] {
		if !n.IsRead {
			count++
		}
	}
	return count
}

func (s *Store) MarkRead(userID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[userID] {
		if n.ID == id {
			n.IsRead = true
			return nil
		}
	}
	return reject(404, "notification not found")
}

func (s *Store) MarkAllRead(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications[userID] {
		n.IsRead = true
	}
}

// ---- catalog ----

func (s *Store) AddCategory(category models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()

	category.ID = s.nextID()
	s.categories = append(s.categories, category)
	return category
}

func (s *Store) AddProduct(product models.ProductDetail) models.ProductDetail {
	s.mu.Lock()
	defer s.mu.Unlock()

	product.ID = s.nextID()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	stored := product
	s.products[product.ID] = &stored
	s.productIDs = append(s.productIDs, product.ID)
	return product
}

type ProductFilter struct {
	CategoryID int64
	TagID      int64
	MinPrice   float64
	MaxPrice   float64
	SortBy     string
	Keyword    string
	Page       int
	PageSize   int
}

func (s *Store) Products(filter ProductFilter) models.Page[models.Product] {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all []models.Product
	for _, id := range s.productIDs {
		p := s.products[id]
		if !p.IsPublished {
			continue
		}
		if filter.CategoryID > 0 && (p.Category == nil || p.Category.ID != filter.CategoryID) {
			continue
		}
		if filter.TagID > 0 && !hasTag(p.Tags, filter.TagID) {
			continue
		}
		if filter.MinPrice > 0 && p.Price < filter.MinPrice {
			continue
		}
		if filter.MaxPrice > 0 && p.Price > filter.MaxPrice {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		all = append(all, p.Product)
	}

	switch filter.SortBy {
	case "price_asc":
		sort.SliceStable(all, func(i, j int) bool { return all[i].Price < all[j].Price })
	case "price_desc":
		sort.SliceStable(all, func(i, j int) bool { return all[i].Price > all[j].Price })
	case "sales", "popular":
		sort.SliceStable(all, func(i, j int) bool { return all[i].SalesCount > all[j].SalesCount })
	case "newest":
		sort.SliceStable(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	}

	return paginate(all, filter.Page, filter.PageSize)
}

func hasTag(tags []models.Tag, id int64) bool {
	for _, t := range tags {
		if t.ID == id {
			return true
		}
	}
	return false
}

func (s *Store) Product(id int64) (models.ProductDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.products[id]
	if !ok || !p.IsPublished {
		return models.ProductDetail{}, reject(404, "product not found")
	}
	p.ViewCount++
	return *p, nil
}

func (s *Store) RelatedProducts(id int64, limit int) []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 4
	}
	base, ok := s.products[id]

	var related []models.Product
	for _, pid := range s.productIDs {
		if pid == id || len(related) == limit {
			continue
		}
		p := s.products[pid]
		if !p.IsPublished {
			continue
		}
		if ok && base.Category != nil && p.Category != nil && p.Category.ID != base.Category.ID {
			continue
		}
		related = append(related, p.Product)
	}
	return related
}

func (s *Store) Categories() []models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Category(nil), s.categories...)
}

func (s *Store) Category(id int64) (models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return models.Category{}, reject(404, "category not found")
}

// ---- favorites ----

func (s *Store) ToggleFavorite(userID, productID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	product, ok := s.products[productID]
	if !ok {
		return false, reject(404, "product not found")
	}

	if s.favorites[userID] == nil {
		s.favorites[userID] = map[int64]*models.Favorite{}
	}
	if _, exists := s.favorites[userID][productID]; exists {
		delete(s.favorites[userID], productID)
		return false, nil
	}

	s.favorites[userID][productID] = &models.Favorite{
		ID:        s.nextID(),
		UserID:    userID,
		ProductID: productID,
		Product: models.CartProduct{
			ID:           product.ID,
			Name:         product.Name,
			Price:        product.Price,
			MainImageURL: product.MainImageURL,
			Stock:        product.Stock,
		},
		CreatedAt: time.Now(),
	}
	return true, nil
}

func (s *Store) Favorites(userID int64) []models.Favorite {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Favorite{}
	for _, f := range s.favorites[userID] {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) IsFavorite(userID, productID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.favorites[userID][productID]
	return ok
}

// ---- reviews ----

func (s *Store) Reviews(productID int64, page, pageSize int) models.Page[models.Review] {
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.reviews[productID]
	all := make([]models.Review, 0, len(list))
	for i := len(list) - 1; i >= 0; i-- {
		all = append(all, *list[i])
	}
	return paginate(all, page, pageSize)
}

func (s *Store) CreateReview(userID, productID, orderID int64, rating int, content string, imageURLs []string) (models.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rating < 1 || rating > 5 {
		return models.Review{}, reject(400, "rating must be between 1 and 5")
	}

	order, ok := s.orders[orderID]
	if !ok || order.userID != userID {
		return models.Review{}, reject(404, "order not found")
	}
	if order.Status != models.OrderStatusCompleted {
		return models.Review{}, reject(400, "only completed orders can be reviewed")
	}
	found := false
	for _, item := range order.Items {
		if item.ProductID == productID {
			found = true
			break
		}
	}
	if !found {
		return models.Review{}, reject(400, "product is not part of this order")
	}

	user := s.findUser(userID)
	review := &models.Review{
		ID: s.nextID(),
		User: models.ReviewUser{
			ID:        user.ID,
			Username:  user.Username,
			AvatarURL: user.AvatarURL,
		},
		Rating:    rating,
		Content:   content,
		ImageURLs: imageURLs,
		CreatedAt: time.Now(),
	}
	s.reviews[productID] = append(s.reviews[productID], review)
	return *review, nil
}

// ---- helpers ----

func paginate[T any](all []T, page, pageSize int) models.Page[T] {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	total := len(all)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	list := make([]T, end-start)
	copy(list, all[start:end])

	totalPages := (total + pageSize - 1) / pageSize
	return models.Page[T]{
		List: list,
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
		},
	}
}
