// shopctl drives the Sellora client core from the command line: it is the
// headless equivalent of the storefront and admin surfaces, wiring the
// session, tenant, cart and catalog stores over the shared API client.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"

	"github.com/sellora/client-go/config"
	"github.com/sellora/client-go/internal/api"
	"github.com/sellora/client-go/internal/cart"
	"github.com/sellora/client-go/internal/catalog"
	"github.com/sellora/client-go/internal/export"
	"github.com/sellora/client-go/internal/model"
	"github.com/sellora/client-go/internal/order"
	"github.com/sellora/client-go/internal/session"
	"github.com/sellora/client-go/internal/storage"
	"github.com/sellora/client-go/internal/tenant"
	"github.com/sellora/client-go/pkg/logger"
)

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: shopctl <command> [flags]

Commands:
  resolve     resolve the active store (-host, -store)
  login       authenticate (-email, -password, -admin)
  logout      clear the session
  whoami      show the current principal
  products    list products (-page, -category, -search)
  cart-add    add a product to the cart (-product)
  cart-list   show cart lines and totals
  cart-clear  empty the cart
  checkout    submit the cart as an order
  orders      list orders (-page)
  export      export orders to XLSX (-out)`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logger.Initialize(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		EnableColor: true,
	})

	kv, cleanup, err := openStorage(cfg)
	if err != nil {
		logger.Fatal("Failed to open state storage", err)
	}
	defer cleanup()

	client := api.NewClient(cfg.API, cfg.Tenant, kv)
	sessions := session.NewStore(client, kv, endpointsFor(args))
	resolver := tenant.NewResolver(client, kv, cfg.Tenant.QueryParam)
	cartStore := cart.NewStore(kv)
	catalogClient := catalog.NewClient(client)
	orderClient := order.NewClient(client)

	ctx := context.Background()
	cartStore.Load(ctx)

	switch command {
	case "resolve":
		fs := flag.NewFlagSet("resolve", flag.ExitOnError)
		host := fs.String("host", "", "host to resolve the store from")
		store := fs.String("store", "", "explicit store identifier")
		fs.Parse(args)

		query := url.Values{}
		if *store != "" {
			query.Set(cfg.Tenant.QueryParam, *store)
		}
		t, err := resolver.Resolve(ctx, *host, query)
		if err != nil {
			logger.Fatal("Store resolution failed", err)
		}
		fmt.Printf("Store: %s (%s)\n", t.Name, t.ID)

	case "login":
		fs := flag.NewFlagSet("login", flag.ExitOnError)
		email := fs.String("email", "", "account email")
		password := fs.String("password", "", "account password")
		fs.Bool("admin", false, "log in as an admin principal")
		fs.Parse(args)

		principal, err := sessions.Login(ctx, session.Credentials{
			Email:    *email,
			Password: *password,
		})
		if err != nil {
			logger.Fatal("Login failed", err)
		}
		fmt.Printf("Logged in as %s <%s>\n", principal.Name, principal.Email)

	case "logout":
		sessions.Logout(ctx)
		fmt.Println("Logged out")

	case "whoami":
		sessions.StartupValidate(ctx)
		principal := sessions.Principal()
		if principal == nil {
			fmt.Println("Not logged in")
			return
		}
		fmt.Printf("%s <%s> role=%s provisional=%v\n",
			principal.Name, principal.Email, principal.Role, principal.Provisional)

	case "products":
		fs := flag.NewFlagSet("products", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		category := fs.String("category", "", "category filter")
		search := fs.String("search", "", "search term")
		fs.Parse(args)

		result, err := catalogClient.ListProducts(ctx, catalog.ListOptions{
			CategoryID: *category,
			Search:     *search,
			Page:       *page,
		})
		if err != nil {
			logger.Fatal("Failed to list products", err)
		}
		for _, p := range result.Products {
			fmt.Printf("%-12s %-30s %10.2f stock=%d\n", p.ID, p.Name, p.Price, p.StockCeiling())
		}
		fmt.Printf("page %d of %d\n", result.Page.Page, result.TotalPages)

	case "cart-add":
		fs := flag.NewFlagSet("cart-add", flag.ExitOnError)
		productID := fs.String("product", "", "product identifier")
		fs.Parse(args)

		product, err := catalogClient.GetProduct(ctx, *productID)
		if err != nil {
			logger.Fatal("Failed to fetch product", err)
		}
		if !cartStore.Add(ctx, product) {
			fmt.Println("Not added: stock ceiling reached")
		}
		printCart(cartStore)

	case "cart-list":
		printCart(cartStore)

	case "cart-clear":
		cartStore.Clear(ctx)
		fmt.Println("Cart cleared")

	case "checkout":
		sessions.StartupValidate(ctx)
		if sessions.Status() != session.StatusAuthenticated {
			logger.Fatal("Checkout requires login", nil)
		}
		principal := sessions.Principal()
		var shipping model.Address
		if len(principal.Addresses) > 0 {
			shipping = principal.Addresses[0]
		}
		created, err := orderClient.Checkout(ctx, cartStore, shipping)
		if err != nil {
			logger.Fatal("Checkout failed", err)
		}
		fmt.Printf("Order %s created, total %.2f\n", created.ID, created.TotalAmount)

	case "orders":
		fs := flag.NewFlagSet("orders", flag.ExitOnError)
		page := fs.Int("page", 1, "page number")
		fs.Parse(args)

		result, err := orderClient.List(ctx, *page)
		if err != nil {
			logger.Fatal("Failed to list orders", err)
		}
		for _, o := range result.Orders {
			fmt.Printf("%-12s %-10s %10.2f %s\n", o.ID, o.Status, o.TotalAmount,
				o.CreatedAt.Format("2006-01-02"))
		}
		fmt.Printf("page %d of %d\n", result.Page.Page, result.TotalPages)

	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("out", "orders.xlsx", "output file path")
		fs.Parse(args)

		var all []model.Order
		for page := 1; ; page++ {
			result, err := orderClient.List(ctx, page)
			if err != nil {
				logger.Fatal("Failed to list orders", err)
			}
			all = append(all, result.Orders...)
			if page >= result.TotalPages {
				break
			}
		}
		if err := export.WriteOrdersXLSX(*out, all); err != nil {
			logger.Fatal("Failed to write export", err)
		}
		fmt.Printf("Wrote %d orders to %s\n", len(all), *out)

	default:
		usage()
	}
}

func printCart(cartStore *cart.Store) {
	lines := cartStore.Lines()
	if len(lines) == 0 {
		fmt.Println("Cart is empty")
		return
	}
	for _, l := range lines {
		fmt.Printf("%-12s %-30s x%d %10.2f\n", l.ProductID, l.Name, l.Quantity,
			l.Price*float64(l.Quantity))
	}
	totals := cartStore.Totals()
	fmt.Printf("Total: %d items, %.2f\n", totals.Count, totals.Amount)
}

// endpointsFor picks admin or customer endpoints based on the -admin flag
// appearing anywhere in the arguments.
func endpointsFor(args []string) session.Endpoints {
	for _, a := range args {
		if a == "-admin" || a == "--admin" {
			return session.AdminEndpoints
		}
	}
	return session.CustomerEndpoints
}

func openStorage(cfg *config.Config) (storage.KV, func(), error) {
	switch cfg.Storage.Backend {
	case "redis":
		r, err := storage.NewRedis(&cfg.Storage.Redis)
		if err != nil {
			return nil, nil, err
		}
		return r, func() { r.Close() }, nil
	case "memory":
		return storage.NewMemory(), func() {}, nil
	default:
		f, err := storage.NewFile(cfg.Storage.FilePath)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	}
}
