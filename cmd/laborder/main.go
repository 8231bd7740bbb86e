// Command laborder browses the lab consumable catalog, manages the local cart
// and submits purchase orders to the order spreadsheet.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/R3E-Network/lab_order/internal/admin"
	"github.com/R3E-Network/lab_order/internal/app"
	"github.com/R3E-Network/lab_order/internal/cli"
	"github.com/R3E-Network/lab_order/internal/config"
	"github.com/R3E-Network/lab_order/internal/domain"
	"github.com/R3E-Network/lab_order/internal/export"
	"github.com/R3E-Network/lab_order/internal/view"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// env bundles the streams of one invocation.
type env struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	e := env{stdin: stdin, stdout: stdout, stderr: stderr}

	root := flag.NewFlagSet("laborder", flag.ContinueOnError)
	root.SetOutput(stderr)
	configPath := root.String("config", "", "Configuration file path (YAML)")
	envFile := root.String("env", "", "Dotenv file path (default ./.env when present)")
	logLevel := root.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := root.String("log-format", "", "Log format (text, json)")
	root.Usage = func() { printUsage(stderr) }
	if err := root.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}

	rest := root.Args()
	if len(rest) == 0 {
		printUsage(stderr)
		return exitUsage
	}
	command, cmdArgs := rest[0], rest[1:]

	switch command {
	case "help":
		printUsage(stdout)
		return exitOK
	case "completion":
		return handleCompletion(e, cmdArgs)
	}

	handler, ok := commands[command]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command: %s\n", command)
		printUsage(stderr)
		return exitUsage
	}

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		fmt.Fprintf(stderr, "config: %v\n", err)
		return exitError
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}

	prompt := cli.NewPrompt(stdin, stdout)
	application, err := app.New(cfg, app.Options{
		Notifier:  cli.NewNotifier(stdout),
		Confirmer: prompt,
	})
	if err != nil {
		fmt.Fprintf(stderr, "init: %v\n", err)
		return exitError
	}
	defer application.Close()

	spinner := cli.NewSpinner(stderr, "Loading catalog...")
	spinner.Start()
	// list failures are already reported and leave the lists empty
	_ = application.Start(ctx)
	spinner.Stop()

	return handler(ctx, e, application, prompt, cmdArgs)
}

type handlerFunc func(ctx context.Context, e env, a *app.Application, prompt *cli.Prompt, args []string) int

var commands map[string]handlerFunc

func init() {
	commands = map[string]handlerFunc{
		"products":       handleProducts,
		"categories":     handleCategories,
		"cart":           handleCart,
		"add":            handleAdd,
		"remove":         handleRemove,
		"qty":            handleQuantity,
		"toggle":         handleToggle,
		"members":        handleMembers,
		"order":          handleOrder,
		"orders":         handleOrders,
		"show":           handleShow,
		"delete-order":   handleDeleteOrder,
		"product-save":   handleProductSave,
		"product-delete": handleProductDelete,
		"member-save":    handleMemberSave,
		"member-delete":  handleMemberDelete,
		"export":         handleExport,
	}
}

// parseArgs parses fs allowing flags after positional arguments.
func parseArgs(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if len(args) > 0 && isNegativeNumber(args[0]) {
			positional = append(positional, args[0])
			args = args[1:]
			continue
		}
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		args = fs.Args()
		if len(args) == 0 {
			return positional, nil
		}
		positional = append(positional, args[0])
		args = args[1:]
	}
}

// isNegativeNumber reports whether arg is "-" followed by decimal digits,
// which is read as a value rather than a flag.
func isNegativeNumber(arg string) bool {
	if len(arg) < 2 || arg[0] != '-' {
		return false
	}
	return strings.TrimLeft(arg[1:], "0123456789") == ""
}

func newFlagSet(e env, name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	return fs
}

// expectArgs parses args and checks the number of positional arguments.
func expectArgs(e env, fs *flag.FlagSet, args []string, n int, usage string) ([]string, bool) {
	pos, err := parseArgs(fs, args)
	if err != nil {
		return nil, false
	}
	if len(pos) != n {
		fmt.Fprintf(e.stderr, "Usage: laborder %s\n", usage)
		return nil, false
	}
	return pos, true
}

func exitFor(err error) int {
	if err != nil {
		return exitError
	}
	return exitOK
}

// =============================================================================
// Catalog
// =============================================================================

func handleProducts(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	fs := newFlagSet(e, "products")
	search := fs.String("search", "", "Filter by name, short name, manufacturer or catalog number")
	category := fs.String("category", "", "Filter by category")
	if _, ok := expectArgs(e, fs, args, 0, "products [--search T] [--category C]"); !ok {
		return exitUsage
	}
	printProducts(e.stdout, a.ProductList(*search, *category))
	return exitOK
}

func handleCategories(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	if _, ok := expectArgs(e, newFlagSet(e, "categories"), args, 0, "categories"); !ok {
		return exitUsage
	}
	for _, c := range a.Categories() {
		fmt.Fprintln(e.stdout, c)
	}
	return exitOK
}

func handleMembers(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	if _, ok := expectArgs(e, newFlagSet(e, "members"), args, 0, "members"); !ok {
		return exitUsage
	}
	printMembers(e.stdout, a.MemberOptions())
	return exitOK
}

// =============================================================================
// Cart
// =============================================================================

func handleCart(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	if _, ok := expectArgs(e, newFlagSet(e, "cart"), args, 0, "cart"); !ok {
		return exitUsage
	}
	printCart(e.stdout, a.CartView())
	return exitOK
}

func handleAdd(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	pos, ok := expectArgs(e, newFlagSet(e, "add"), args, 1, "add <productId>")
	if !ok {
		return exitUsage
	}
	total, err := a.AddToCart(pos[0])
	if err == nil {
		fmt.Fprintf(e.stdout, "Cart: %d item(s)\n", total)
	}
	return exitFor(err)
}

func handleRemove(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	pos, ok := expectArgs(e, newFlagSet(e, "remove"), args, 1, "remove <productId>")
	if !ok {
		return exitUsage
	}
	return exitFor(reportErr(e, a.RemoveFromCart(pos[0])))
}

func handleQuantity(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	pos, ok := expectArgs(e, newFlagSet(e, "qty"), args, 2, "qty <productId> <n>")
	if !ok {
		return exitUsage
	}
	return exitFor(reportErr(e, a.SetQuantity(pos[0], pos[1])))
}

func handleToggle(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	pos, ok := expectArgs(e, newFlagSet(e, "toggle"), args, 1, "toggle <productId>")
	if !ok {
		return exitUsage
	}
	return exitFor(reportErr(e, a.ToggleChecked(pos[0])))
}

func reportErr(e env, err error) error {
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
	}
	return err
}

// =============================================================================
// Orders
// =============================================================================

func handleOrder(ctx context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	fs := newFlagSet(e, "order")
	member := fs.String("member", "", "Id of the member placing the order")
	notes := fs.String("notes", "", "Order notes")
	if _, ok := expectArgs(e, fs, args, 0, "order --member <id> [--notes N]"); !ok {
		return exitUsage
	}
	created, err := a.SubmitOrder(ctx, *member, *notes)
	if err != nil {
		return exitError
	}
	printPreview(e.stdout, view.OrderPreview(created))
	return exitOK
}

func handleOrders(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	if _, ok := expectArgs(e, newFlagSet(e, "orders"), args, 0, "orders"); !ok {
		return exitUsage
	}
	printOrders(e.stdout, a.Orders())
	return exitOK
}

func handleShow(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	pos, ok := expectArgs(e, newFlagSet(e, "show"), args, 1, "show <orderNumber|id>")
	if !ok {
		return exitUsage
	}
	preview, found := a.OrderPreview(pos[0])
	if !found {
		fmt.Fprintf(e.stderr, "Order not found: %s\n", pos[0])
		return exitError
	}
	printPreview(e.stdout, preview)
	return exitOK
}

func handleDeleteOrder(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	pos, ok := expectArgs(e, newFlagSet(e, "delete-order"), args, 1, "delete-order <id>")
	if !ok {
		return exitUsage
	}
	return exitFor(a.DeleteOrder(pos[0]))
}

func handleExport(_ context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	fs := newFlagSet(e, "export")
	format := fs.String("format", "csv", "Output format (csv, xlsx)")
	out := fs.String("out", "-", "Output file, - for stdout")
	if _, ok := expectArgs(e, fs, args, 0, "export [--format csv|xlsx] [--out file]"); !ok {
		return exitUsage
	}
	f, err := export.ParseFormat(*format)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitUsage
	}

	if *out == "-" {
		return exitFor(reportErr(e, a.ExportOrders(e.stdout, f)))
	}
	file, err := os.Create(*out)
	if err != nil {
		return exitFor(reportErr(e, err))
	}
	if err := a.ExportOrders(file, f); err != nil {
		file.Close()
		return exitFor(reportErr(e, err))
	}
	if err := file.Close(); err != nil {
		return exitFor(reportErr(e, err))
	}
	fmt.Fprintf(e.stdout, "Exported %d order(s) to %s\n", len(a.Orders()), *out)
	return exitOK
}

// =============================================================================
// Administration
// =============================================================================

func handleProductSave(ctx context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	fs := newFlagSet(e, "product-save")
	var p domain.Product
	fs.StringVar(&p.ID, "id", "", "Product id (empty creates a new product)")
	fs.StringVar(&p.Name, "name", "", "Product name")
	fs.StringVar(&p.ShortName, "short-name", "", "Short name")
	fs.StringVar(&p.Manufacturer, "manufacturer", "", "Manufacturer")
	fs.StringVar(&p.CatalogNumber, "catalog-number", "", "Catalog number")
	fs.StringVar(&p.Capacity, "capacity", "", "Capacity")
	fs.StringVar(&p.UsagePlace, "usage-place", "", "Usage place")
	fs.StringVar(&p.Category, "category", "", "Category")
	fs.StringVar(&p.ImageURL, "image-url", "", "Image URL")
	if _, ok := expectArgs(e, fs, args, 0, "product-save [--id ID] --name N [...]"); !ok {
		return exitUsage
	}
	return exitFor(a.SaveProduct(ctx, p))
}

func handleProductDelete(ctx context.Context, e env, a *app.Application, prompt *cli.Prompt, args []string) int {
	fs := newFlagSet(e, "product-delete")
	fs.BoolVar(&prompt.AssumeYes, "yes", false, "Do not ask for confirmation")
	pos, ok := expectArgs(e, fs, args, 1, "product-delete <id> [--yes]")
	if !ok {
		return exitUsage
	}
	return exitForDelete(e, a.DeleteProduct(ctx, pos[0]))
}

func handleMemberSave(ctx context.Context, e env, a *app.Application, _ *cli.Prompt, args []string) int {
	fs := newFlagSet(e, "member-save")
	var m domain.Member
	fs.StringVar(&m.ID, "id", "", "Member id (empty creates a new member)")
	fs.StringVar(&m.Name, "name", "", "Member name")
	fs.StringVar(&m.Email, "email", "", "Member email")
	if _, ok := expectArgs(e, fs, args, 0, "member-save [--id ID] --name N [--email E]"); !ok {
		return exitUsage
	}
	return exitFor(a.SaveMember(ctx, m))
}

func handleMemberDelete(ctx context.Context, e env, a *app.Application, prompt *cli.Prompt, args []string) int {
	fs := newFlagSet(e, "member-delete")
	fs.BoolVar(&prompt.AssumeYes, "yes", false, "Do not ask for confirmation")
	pos, ok := expectArgs(e, fs, args, 1, "member-delete <id> [--yes]")
	if !ok {
		return exitUsage
	}
	return exitForDelete(e, a.DeleteMember(ctx, pos[0]))
}

func exitForDelete(e env, err error) int {
	if errors.Is(err, admin.ErrCancelled) {
		fmt.Fprintln(e.stdout, "Cancelled")
		return exitOK
	}
	return exitFor(err)
}

// =============================================================================
// Completion
// =============================================================================

func handleCompletion(e env, args []string) int {
	fs := newFlagSet(e, "completion")
	install := fs.Bool("install", false, "Install the script under the home directory")
	pos, ok := expectArgs(e, fs, args, 1, "completion bash|zsh [--install]")
	if !ok {
		return exitUsage
	}
	shell := strings.ToLower(pos[0])

	if !*install {
		if err := cli.WriteCompletion(e.stdout, shell); err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return exitUsage
		}
		return exitOK
	}

	home, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitError
	}
	path, err := cli.InstallCompletion(home, shell)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return exitError
	}
	fmt.Fprintf(e.stdout, "Completion script installed to: %s\n", path)
	return exitOK
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `Lab consumable ordering

Usage:
  laborder [--config path] [--env path] [--log-level L] [--log-format F] <command> [options]

Commands:`)
	for _, c := range cli.Commands {
		fmt.Fprintf(w, "  %-16s %s\n", c.Name, c.Usage)
	}
	fmt.Fprintln(w, `
Environment:
  LAB_ORDER_API_URL        Order spreadsheet web app URL (required)
  LAB_ORDER_CART_BACKEND   bolt (default), file or memory
  LAB_ORDER_CART_PATH      Cart database file or directory`)
}
