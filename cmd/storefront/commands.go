package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/parampare/storefront/internal/account"
	"github.com/parampare/storefront/internal/cart"
	"github.com/parampare/storefront/internal/catalog"
	"github.com/parampare/storefront/internal/checkout"
	"github.com/parampare/storefront/internal/wishlist"
	pkgvalidator "github.com/parampare/storefront/pkg/validator"
)

type loginCmd struct {
	Email    string `arg:"" help:"Account email."`
	Password string `help:"Account password." env:"STOREFRONT_PASSWORD"`
}

func (c *loginCmd) Run(cc *cliContext) error {
	user, err := cc.app.Account.Login(cc.ctx, account.LoginInput{
		Email:    c.Email,
		Password: c.Password,
	})
	if err != nil {
		return printFieldErrors(err)
	}
	name := c.Email
	if user != nil && user.Name != "" {
		name = user.Name
	}
	fmt.Printf("Logged in as %s\n", name)
	return nil
}

type logoutCmd struct{}

func (c *logoutCmd) Run(cc *cliContext) error {
	if err := cc.app.Account.Logout(cc.ctx); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

type registerCmd struct {
	Name     string `help:"Full name." required:""`
	Email    string `help:"Email address." required:""`
	Password string `help:"Password." required:""`
	Mobile   string `help:"10-digit mobile number." required:""`
	SendOTP  bool   `help:"Request a registration OTP for the mobile number first."`
}

func (c *registerCmd) Run(cc *cliContext) error {
	if c.SendOTP {
		if err := cc.app.Account.SendOTP(cc.ctx, c.Mobile, "register"); err != nil {
			return printFieldErrors(err)
		}
		fmt.Println("OTP sent")
	}
	if err := cc.app.Account.Register(cc.ctx, account.RegisterInput{
		Name:     c.Name,
		Email:    c.Email,
		Password: c.Password,
		Mobile:   c.Mobile,
	}); err != nil {
		return printFieldErrors(err)
	}
	fmt.Println("Registered. Log in with: storefront login", c.Email)
	return nil
}

type productsCmd struct {
	Category    string `help:"Filter by category slug."`
	Subcategory string `help:"Filter by subcategory slug."`
	MinPrice    int64  `help:"Minimum price."`
	MaxPrice    int64  `help:"Maximum price."`
	Sort        string `help:"Sort order (price_asc, price_desc, rating, newest)."`
	Page        int    `help:"Page number." default:"1"`
	Limit       int    `help:"Page size." default:"20"`
	Search      string `help:"Free-text search."`
	Fabric      string `help:"Filter by fabric."`
	Occasion    string `help:"Filter by occasion."`
	Color       string `help:"Filter by color."`
	Weave       string `help:"Filter by weave."`
	Border      string `help:"Filter by border."`
	Pallu       string `help:"Filter by pallu."`
}

func (c *productsCmd) Run(cc *cliContext) error {
	page, err := cc.app.Catalog.Products(cc.ctx, catalog.ListParams{
		Category:    c.Category,
		Subcategory: c.Subcategory,
		MinPrice:    c.MinPrice,
		MaxPrice:    c.MaxPrice,
		Sort:        c.Sort,
		Page:        c.Page,
		Limit:       c.Limit,
		Search:      c.Search,
		Fabric:      c.Fabric,
		Occasion:    c.Occasion,
		Color:       c.Color,
		Weave:       c.Weave,
		Border:      c.Border,
		Pallu:       c.Pallu,
	})
	if err != nil {
		return err
	}

	for _, p := range page.Products {
		stock := ""
		if !p.InStock {
			stock = "  [out of stock]"
		}
		fmt.Printf("%-26s ₹%-7d %.1f★ (%d)  %s%s\n", p.ID, p.Price, p.Rating, p.ReviewCount, p.Name, stock)
	}
	fmt.Printf("page %d/%d, %d products\n", page.CurrentPage, page.TotalPages, page.Count)
	return nil
}

type productCmd struct {
	ID string `arg:"" help:"Product id."`
}

func (c *productCmd) Run(cc *cliContext) error {
	p, err := cc.app.Catalog.Product(cc.ctx, c.ID)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n₹%d", p.Name, p.Price)
	if p.OriginalPrice > p.Price {
		fmt.Printf(" (was ₹%d)", p.OriginalPrice)
	}
	fmt.Printf("  %.1f★ (%d reviews)\n", p.Rating, p.ReviewCount)
	if p.Fabric != "" {
		fmt.Printf("Fabric: %s\n", p.Fabric)
	}
	if p.Occasion != "" {
		fmt.Printf("Occasion: %s\n", p.Occasion)
	}
	if p.Description != "" {
		fmt.Println(p.Description)
	}
	if !p.InStock {
		fmt.Println("Out of stock")
	}
	return nil
}

type categoriesCmd struct {
	Tree bool `help:"Show the category hierarchy."`
}

func (c *categoriesCmd) Run(cc *cliContext) error {
	if c.Tree {
		tree, err := cc.app.Catalog.CategoryTree(cc.ctx)
		if err != nil {
			return err
		}
		printCategoryTree(tree, 0)
		return nil
	}

	cats, err := cc.app.Catalog.Categories(cc.ctx)
	if err != nil {
		return err
	}
	for _, cat := range cats {
		fmt.Printf("%-24s %s\n", cat.Slug, cat.Name)
	}
	return nil
}

func printCategoryTree(cats []catalog.Category, depth int) {
	for _, cat := range cats {
		fmt.Printf("%s%s\n", strings.Repeat("  ", depth), cat.Name)
		printCategoryTree(cat.Children, depth+1)
	}
}

type cartCmd struct {
	Show   cartShowCmd   `cmd:"" default:"1" help:"Show the cart."`
	Add    cartAddCmd    `cmd:"" help:"Add a product to the cart."`
	Remove cartRemoveCmd `cmd:"" help:"Remove a product from the cart."`
	Update cartUpdateCmd `cmd:"" help:"Change a line's quantity."`
}

type cartShowCmd struct{}

func (c *cartShowCmd) Run(cc *cliContext) error {
	items := cc.app.Cart.Load(cc.ctx)
	if len(items) == 0 {
		fmt.Println("Your cart is empty")
		return nil
	}
	for _, item := range items {
		fmt.Printf("%-26s x%d  ₹%d  %s\n", item.ID, item.Quantity, item.Price*int64(item.Quantity), item.Name)
	}
	fmt.Printf("%d lines, subtotal ₹%d\n", items.Count(), items.Subtotal())
	return nil
}

type cartAddCmd struct {
	ID       string `arg:"" help:"Product id."`
	Quantity int    `help:"Quantity to add." default:"1"`
}

func (c *cartAddCmd) Run(cc *cliContext) error {
	p, err := cc.app.Catalog.Product(cc.ctx, c.ID)
	if err != nil {
		return err
	}
	if err := cc.app.Cart.Add(cc.ctx, cart.AddInput{
		ID:            p.ID,
		Name:          p.Name,
		Image:         p.Image(),
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
	}, c.Quantity); err != nil {
		return err
	}
	fmt.Printf("Added %s to cart\n", p.Name)
	return nil
}

type cartRemoveCmd struct {
	ID string `arg:"" help:"Product id."`
}

func (c *cartRemoveCmd) Run(cc *cliContext) error {
	if err := cc.app.Cart.Remove(cc.ctx, c.ID); err != nil {
		return err
	}
	fmt.Println("Removed from cart")
	return nil
}

type cartUpdateCmd struct {
	ID       string `arg:"" help:"Product id."`
	Quantity int    `arg:"" help:"New quantity (1-5)."`
}

func (c *cartUpdateCmd) Run(cc *cliContext) error {
	if err := cc.app.Cart.UpdateQuantity(cc.ctx, c.ID, c.Quantity); err != nil {
		return err
	}
	fmt.Println("Quantity updated")
	return nil
}

type wishlistCmd struct {
	Show   wishlistShowCmd   `cmd:"" default:"1" help:"Show the wishlist."`
	Add    wishlistAddCmd    `cmd:"" help:"Add a product to the wishlist."`
	Remove wishlistRemoveCmd `cmd:"" help:"Remove a product from the wishlist."`
	Toggle wishlistToggleCmd `cmd:"" help:"Toggle a product's wishlist membership."`
}

type wishlistShowCmd struct{}

func (c *wishlistShowCmd) Run(cc *cliContext) error {
	items := cc.app.Wishlist.Load(cc.ctx)
	if len(items) == 0 {
		fmt.Println("Your wishlist is empty")
		return nil
	}
	for _, item := range items {
		stock := ""
		if !item.InStock {
			stock = "  [out of stock]"
		}
		fmt.Printf("%-26s ₹%-7d %.1f★ (%d)  %s%s\n", item.ID, item.Price, item.Rating, item.Reviews, item.Name, stock)
	}
	return nil
}

type wishlistAddCmd struct {
	ID string `arg:"" help:"Product id."`
}

func (c *wishlistAddCmd) Run(cc *cliContext) error {
	item, err := wishlistItem(cc, c.ID)
	if err != nil {
		return err
	}
	if err := cc.app.Wishlist.Add(cc.ctx, item); err != nil {
		return err
	}
	fmt.Printf("Added %s to wishlist\n", item.Name)
	return nil
}

type wishlistRemoveCmd struct {
	ID string `arg:"" help:"Product id."`
}

func (c *wishlistRemoveCmd) Run(cc *cliContext) error {
	if err := cc.app.Wishlist.Remove(cc.ctx, c.ID); err != nil {
		return err
	}
	fmt.Println("Removed from wishlist")
	return nil
}

type wishlistToggleCmd struct {
	ID string `arg:"" help:"Product id."`
}

func (c *wishlistToggleCmd) Run(cc *cliContext) error {
	item, err := wishlistItem(cc, c.ID)
	if err != nil {
		return err
	}
	added, err := cc.app.Wishlist.Toggle(cc.ctx, item)
	if err != nil {
		return err
	}
	if added {
		fmt.Printf("Added %s to wishlist\n", item.Name)
	} else {
		fmt.Printf("Removed %s from wishlist\n", item.Name)
	}
	return nil
}

func wishlistItem(cc *cliContext, id string) (wishlist.Item, error) {
	p, err := cc.app.Catalog.Product(cc.ctx, id)
	if err != nil {
		return wishlist.Item{}, err
	}
	badge := ""
	if len(p.Badges) > 0 {
		badge = p.Badges[0]
	}
	return wishlist.Item{
		ID:            p.ID,
		Name:          p.Name,
		Image:         p.Image(),
		Price:         p.Price,
		OriginalPrice: p.OriginalPrice,
		Rating:        p.Rating,
		Reviews:       p.ReviewCount,
		Badge:         badge,
		InStock:       p.InStock,
	}, nil
}

type addressCmd struct {
	List       addressListCmd       `cmd:"" default:"1" help:"List saved addresses."`
	Add        addressAddCmd        `cmd:"" help:"Save a new address."`
	Remove     addressRemoveCmd     `cmd:"" help:"Delete a saved address."`
	SetDefault addressSetDefaultCmd `cmd:"" name:"set-default" help:"Mark an address as default."`
}

type addressListCmd struct{}

func (c *addressListCmd) Run(cc *cliContext) error {
	addresses, err := cc.app.Addresses.List(cc.ctx)
	if err != nil {
		return err
	}
	if len(addresses) == 0 {
		fmt.Println("No saved addresses")
		return nil
	}
	for _, a := range addresses {
		def := ""
		if a.IsDefault {
			def = "  (default)"
		}
		fmt.Printf("%s  %s, %s, %s %s (%s)%s\n", a.ID, a.Street, a.City, a.State, a.Pincode, a.FullName, def)
	}
	return nil
}

type addressAddCmd struct {
	FullName string `help:"Recipient name." required:""`
	Phone    string `help:"10-digit phone number." required:""`
	Street   string `help:"Street address." required:""`
	Landmark string `help:"Landmark (optional)."`
	City     string `help:"City." required:""`
	State    string `help:"State." required:""`
	Pincode  string `help:"6-digit pincode." required:""`
}

func (c *addressAddCmd) Run(cc *cliContext) error {
	addr, err := cc.app.Addresses.Add(cc.ctx, checkout.AddressInput{
		FullName: c.FullName,
		Phone:    c.Phone,
		Street:   c.Street,
		Landmark: c.Landmark,
		City:     c.City,
		State:    c.State,
		Pincode:  c.Pincode,
	})
	if err != nil {
		return printFieldErrors(err)
	}
	fmt.Printf("Saved address %s\n", addr.ID)
	return nil
}

type addressRemoveCmd struct {
	ID string `arg:"" help:"Address id."`
}

func (c *addressRemoveCmd) Run(cc *cliContext) error {
	if err := cc.app.Addresses.Remove(cc.ctx, c.ID); err != nil {
		return err
	}
	fmt.Println("Address removed")
	return nil
}

type addressSetDefaultCmd struct {
	ID string `arg:"" help:"Address id."`
}

func (c *addressSetDefaultCmd) Run(cc *cliContext) error {
	if err := cc.app.Addresses.SetDefault(cc.ctx, c.ID); err != nil {
		return err
	}
	fmt.Println("Default address updated")
	return nil
}

type checkoutCmd struct {
	Address string `help:"Saved address id (defaults to the default address)."`
	Payment string `help:"Payment method." enum:"cod,upi" default:"cod"`
}

func (c *checkoutCmd) Run(cc *cliContext) error {
	addressID := c.Address
	if addressID == "" {
		addr, err := cc.app.Addresses.Default(cc.ctx)
		if err != nil {
			return fmt.Errorf("no address selected and no default saved: %w", err)
		}
		addressID = addr.ID
	}

	order, err := cc.app.Checkout.PlaceOrder(cc.ctx, addressID, c.Payment)
	if err != nil {
		return err
	}
	fmt.Printf("Order %s placed: %d lines, ₹%d, %s\n", order.ID, order.Items.Count(), order.Total, order.PaymentMethod)
	return nil
}

type ordersCmd struct {
	ID string `arg:"" optional:"" help:"Show one order instead of the history."`
}

func (c *ordersCmd) Run(cc *cliContext) error {
	if c.ID != "" {
		order, err := cc.app.Checkout.Order(cc.ctx, c.ID)
		if err != nil {
			return err
		}
		fmt.Printf("Order %s (%s): ₹%d, placed %s\n", order.ID, order.Status, order.Total, order.CreatedAt.Format("2006-01-02 15:04"))
		for _, item := range order.Items {
			fmt.Printf("  %-26s x%d  ₹%d\n", item.ID, item.Quantity, item.Price*int64(item.Quantity))
		}
		return nil
	}

	orders, err := cc.app.Checkout.Orders(cc.ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders yet")
		return nil
	}
	for _, order := range orders {
		fmt.Printf("%s  %s  ₹%-7d %s\n", order.ID, order.CreatedAt.Format("2006-01-02"), order.Total, order.Status)
	}
	return nil
}

type watchCmd struct{}

func (c *watchCmd) Run(cc *cliContext) error {
	return cc.app.Run(cc.ctx)
}

// printFieldErrors unwraps validation errors into per-field lines, keeping
// the original error for everything else.
func printFieldErrors(err error) error {
	var verr *pkgvalidator.ValidationError
	if errors.As(err, &verr) {
		for field, msg := range verr.Fields() {
			fmt.Printf("  %s: %s\n", field, msg)
		}
	}
	return err
}
