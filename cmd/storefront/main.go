// Command storefront is a headless client for the suju e-commerce API:
// auth, catalog browsing, cart, checkout, order lifecycle and
// notifications, driven from the terminal.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"suju/storefront/internal/api"
	"suju/storefront/internal/cart"
	"suju/storefront/internal/catalog"
	"suju/storefront/internal/config"
	"suju/storefront/internal/credentials"
	"suju/storefront/internal/log"
	"suju/storefront/internal/models"
	"suju/storefront/internal/notify"
	"suju/storefront/internal/orders"
	"suju/storefront/internal/profile"
	"suju/storefront/internal/session"
)

type app struct {
	log     zerolog.Logger
	creds   *credentials.Store
	client  *api.Client
	session *session.Manager
	cart    *cart.Synchronizer
	orders  *orders.Viewer
	notify  *notify.Poller
	catalog *catalog.Service
	profile *profile.Service
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config error:", err)
		os.Exit(1)
	}

	logger := log.New(cfg.Environment)

	creds, err := credentials.Open(cfg.State.Path)
	if err != nil {
		logger.Fatal().Err(err).Msg("open state store failed")
	}
	defer creds.Close()

	a := &app{log: logger, creds: creds}

	client := api.New(cfg.API, creds, logger, api.WithSessionExpiredHook(func() {
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
		if a.session != nil {
			a.session.Expire()
		}
	}))

	a.client = client
	a.session = session.NewManager(client, creds, logger)
	a.cart = cart.NewSynchronizer(client, logger, cart.WithConfirm(confirmPrompt))
	a.orders = orders.NewViewer(client, logger)
	a.notify = notify.NewPoller(client, cfg.Notify.PollInterval, logger)
	a.catalog = catalog.NewService(client)
	a.profile = profile.NewService(client, creds, logger)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", api.UserMessage(err))
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: storefront <command> [flags]

commands:
  register        create an account
  login           sign in
  logout          sign out (local only)
  me              show the current profile
  products        browse the catalog
  cart            show the cart
  cart-add        add a product to the cart
  cart-qty        change a cart item quantity
  cart-rm         remove a cart item
  checkout        place an order from selected cart items
  orders          list orders
  order           show one order
  pay             pay a pending order
  cancel          cancel a pending order
  confirm         confirm receipt of a shipped order
  refund          request a refund on a paid order
  addresses       list shipping addresses
  address-add     add a shipping address
  fav             toggle a product favorite
  favs            list favorites
  notifications   list notifications
  watch           poll unread notifications until interrupted
  read-all        mark all notifications read
`)
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return a.cmdRegister(ctx, args)
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.session.Logout()
		a.cart.Reset()
		a.notify.Stop()
		fmt.Println("logged out")
		return nil
	case "me":
		return a.cmdMe(ctx)
	case "products":
		return a.cmdProducts(ctx, args)
	case "cart":
		return a.cmdCart(ctx)
	case "cart-add":
		return a.cmdCartAdd(ctx, args)
	case "cart-qty":
		return a.cmdCartQty(ctx, args)
	case "cart-rm":
		return a.cmdCartRemove(ctx, args)
	case "checkout":
		return a.cmdCheckout(ctx, args)
	case "orders":
		return a.cmdOrders(ctx, args)
	case "order":
		return a.cmdOrder(ctx, args)
	case "pay", "cancel", "confirm", "refund":
		return a.cmdTransition(ctx, command, args)
	case "addresses":
		return a.cmdAddresses(ctx)
	case "address-add":
		return a.cmdAddressAdd(ctx, args)
	case "fav":
		return a.cmdToggleFavorite(ctx, args)
	case "favs":
		return a.cmdFavorites(ctx)
	case "notifications":
		return a.cmdNotifications(ctx)
	case "watch":
		return a.cmdWatch(ctx)
	case "read-all":
		a.notify.MarkAllRead(ctx)
		fmt.Println("all notifications marked read")
		return nil
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "username")
	email := fs.String("email", "", "email address")
	password := fs.String("password", "", "password")
	confirm := fs.String("confirm", "", "password confirmation (defaults to password)")
	phone := fs.String("phone", "", "phone number")
	fs.Parse(args)

	if *confirm == "" {
		*confirm = *password
	}

	result, err := a.session.Register(ctx, session.RegisterInput{
		Username:        *username,
		Email:           *email,
		Password:        *password,
		ConfirmPassword: *confirm,
		Phone:           *phone,
		AcceptTerms:     true,
	})
	if err != nil {
		return err
	}
	fmt.Printf("registered as %s (#%d)\n", result.User.Username, result.User.ID)
	return nil
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	account := fs.String("account", "", "username or email")
	password := fs.String("password", "", "password")
	fs.Parse(args)

	result, err := a.session.Login(ctx, session.LoginInput{Account: *account, Password: *password})
	if err != nil {
		return err
	}
	if err := a.cart.Refresh(ctx); err != nil {
		a.log.Warn().Err(err).Msg("cart refresh after login failed")
	}
	fmt.Printf("welcome back, %s (cart: %d items)\n", result.User.Username, a.cart.Count())
	return nil
}

func (a *app) cmdMe(ctx context.Context) error {
	a.session.Init(ctx)
	user := a.session.User()
	if user == nil {
		return fmt.Errorf("not logged in")
	}
	fmt.Printf("#%d %s <%s>", user.ID, user.Username, user.Email)
	if user.IsAdmin {
		fmt.Print(" [admin]")
	}
	fmt.Println()
	return nil
}

func (a *app) cmdProducts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ExitOnError)
	keyword := fs.String("keyword", "", "search keyword")
	sortBy := fs.String("sort", "", "price_asc|price_desc|sales|newest|popular")
	page := fs.Int("page", 1, "page")
	fs.Parse(args)

	result, err := a.catalog.Products(ctx, catalog.ProductQuery{
		Keyword: *keyword,
		SortBy:  *sortBy,
		Page:    *page,
	})
	if err != nil {
		return err
	}
	for _, p := range result.List {
		fmt.Printf("#%-4d %-30s ¥%-8.2f stock %d\n", p.ID, p.Name, p.Price, p.Stock)
	}
	fmt.Printf("page %d/%d (%d products)\n",
		result.Pagination.Page, result.Pagination.TotalPages, result.Pagination.Total)
	return nil
}

func (a *app) cmdCart(ctx context.Context) error {
	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	for _, item := range a.cart.Items() {
		marker := " "
		if a.cart.IsSelected(item.ID) {
			marker = "*"
		}
		fmt.Printf("%s #%-4d %-30s x%-3d ¥%.2f\n", marker, item.ID, item.Product.Name, item.Quantity, item.Subtotal)
	}
	fmt.Printf("selected total: ¥%.2f (%d items in cart)\n", a.cart.SelectedTotal(), a.cart.Count())
	return nil
}

func (a *app) cmdCartAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
	productID := fs.Int64("product", 0, "product id")
	qty := fs.Int("qty", 1, "quantity")
	fs.Parse(args)

	if err := a.cart.Add(ctx, *productID, *qty); err != nil {
		return err
	}
	fmt.Printf("added, cart now holds %d items\n", a.cart.Count())
	return nil
}

func (a *app) cmdCartQty(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-qty", flag.ExitOnError)
	itemID := fs.Int64("item", 0, "cart item id")
	qty := fs.Int("qty", 1, "new quantity")
	fs.Parse(args)

	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	var stock int
	for _, item := range a.cart.Items() {
		if item.ID == *itemID {
			stock = item.Product.Stock
		}
	}
	if err := a.cart.UpdateQuantity(ctx, *itemID, *qty, stock); err != nil {
		return err
	}
	fmt.Printf("cart now holds %d items\n", a.cart.Count())
	return nil
}

func (a *app) cmdCartRemove(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cart-rm", flag.ExitOnError)
	itemID := fs.Int64("item", 0, "cart item id")
	fs.Parse(args)

	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	if err := a.cart.Remove(ctx, *itemID); err != nil {
		return err
	}
	fmt.Printf("cart now holds %d items\n", a.cart.Count())
	return nil
}

func (a *app) cmdCheckout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	addressID := fs.Int64("address", 0, "shipping address id")
	method := fs.String("method", "alipay", "payment method: alipay|wechat|unionpay")
	note := fs.String("note", "", "order note")
	fs.Parse(args)

	if err := a.cart.Load(ctx); err != nil {
		return err
	}
	selected := a.cart.SelectedIDs()
	if len(selected) == 0 {
		return fmt.Errorf("nothing selected in the cart")
	}

	result, err := a.orders.Create(ctx, orders.CreateInput{
		CartItemIDs:   selected,
		AddressID:     *addressID,
		PaymentMethod: *method,
		Note:          *note,
	})
	if err != nil {
		return err
	}
	if err := a.cart.Refresh(ctx); err != nil {
		a.log.Warn().Err(err).Msg("cart refresh after checkout failed")
	}
	fmt.Printf("order %s created, total ¥%.2f\n", result.Order.OrderNumber, result.Order.TotalAmount)
	return nil
}

func (a *app) cmdOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ExitOnError)
	status := fs.String("status", "", "filter by status")
	page := fs.Int("page", 1, "page")
	fs.Parse(args)

	result, err := a.orders.List(ctx, orders.ListQuery{
		Page:   *page,
		Status: parseStatus(*status),
	})
	if err != nil {
		return err
	}
	for _, o := range result.List {
		fmt.Printf("#%-4d %s %-10s ¥%.2f\n", o.ID, o.OrderNumber, o.Status, o.TotalAmount)
	}
	return nil
}

func (a *app) cmdOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ExitOnError)
	id := fs.Int64("id", 0, "order id")
	fs.Parse(args)

	detail, err := a.orders.Get(ctx, *id)
	if err != nil {
		return err
	}
	printOrder(detail)
	return nil
}

func (a *app) cmdTransition(ctx context.Context, action string, args []string) error {
	fs := flag.NewFlagSet(action, flag.ExitOnError)
	id := fs.Int64("id", 0, "order id")
	reason := fs.String("reason", "", "reason (cancel/refund)")
	fs.Parse(args)

	var err error
	var detail models.OrderDetail
	switch action {
	case "pay":
		detail, err = a.orders.Pay(ctx, *id)
	case "cancel":
		detail, err = a.orders.Cancel(ctx, *id, *reason)
	case "confirm":
		detail, err = a.orders.Confirm(ctx, *id)
	case "refund":
		detail, err = a.orders.RequestRefund(ctx, *id, *reason)
	}
	if err != nil {
		return err
	}
	fmt.Printf("order %s is now %s (%s)\n", detail.OrderNumber, detail.Status, detail.StatusText)
	return nil
}

func (a *app) cmdNotifications(ctx context.Context) error {
	list, pagination, err := a.notify.List(ctx, 1, 20)
	if err != nil {
		return err
	}
	for _, n := range list {
		read := " "
		if !n.IsRead {
			read = "•"
		}
		fmt.Printf("%s #%-4d [%s] %s — %s\n", read, n.ID, n.Type, n.Title, n.Content)
	}
	fmt.Printf("%d notifications\n", pagination.Total)
	return nil
}

// cmdWatch runs the poller the way the web header does: a repeating
// unread check for the lifetime of the session, torn down on exit.
func (a *app) cmdWatch(ctx context.Context) error {
	a.session.Init(ctx)
	if !a.session.IsAuthenticated() {
		return fmt.Errorf("not logged in")
	}

	if err := a.notify.Start(ctx); err != nil {
		return err
	}
	defer a.notify.Stop()

	fmt.Println("watching for notifications, ctrl-c to stop")
	last := -1
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		if count := a.notify.Unread(); count != last {
			fmt.Printf("unread: %d\n", count)
			last = count
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(time.Second):
		}
	}
}

func (a *app) cmdAddresses(ctx context.Context) error {
	addresses, err := a.profile.Addresses(ctx)
	if err != nil {
		return err
	}
	for _, addr := range addresses {
		def := " "
		if addr.IsDefault {
			def = "*"
		}
		fmt.Printf("%s #%-4d %s %s, %s %s %s %s\n", def, addr.ID,
			addr.RecipientName, addr.Phone, addr.Province, addr.City, addr.District, addr.DetailAddress)
	}
	return nil
}

func (a *app) cmdAddressAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("address-add", flag.ExitOnError)
	name := fs.String("name", "", "recipient name")
	phone := fs.String("phone", "", "recipient phone")
	province := fs.String("province", "", "province")
	city := fs.String("city", "", "city")
	district := fs.String("district", "", "district")
	detail := fs.String("detail", "", "street address")
	isDefault := fs.Bool("default", false, "set as default")
	fs.Parse(args)

	address, err := a.profile.CreateAddress(ctx, profile.AddressInput{
		RecipientName: *name,
		Phone:         *phone,
		Province:      *province,
		City:          *city,
		District:      *district,
		DetailAddress: *detail,
		IsDefault:     *isDefault,
	})
	if err != nil {
		return err
	}
	fmt.Printf("address #%d saved\n", address.ID)
	return nil
}

func (a *app) cmdToggleFavorite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("fav", flag.ExitOnError)
	productID := fs.Int64("product", 0, "product id")
	fs.Parse(args)

	isFavorite, err := a.profile.ToggleFavorite(ctx, *productID)
	if err != nil {
		return err
	}
	if isFavorite {
		fmt.Println("added to favorites")
	} else {
		fmt.Println("removed from favorites")
	}
	return nil
}

func (a *app) cmdFavorites(ctx context.Context) error {
	favorites, err := a.profile.Favorites(ctx)
	if err != nil {
		return err
	}
	for _, f := range favorites {
		fmt.Printf("#%-4d %-30s ¥%.2f\n", f.Product.ID, f.Product.Name, f.Product.Price)
	}
	return nil
}

func confirmPrompt(prompt string) bool {
	fmt.Printf("%s [y/N] ", prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
