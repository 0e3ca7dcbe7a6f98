// larderctl is a command-line client for the larder API.
//
// Usage:
//
//	larderctl [command] [flags]
//
// Commands: list, get, add, update, buy, delete, stats, watch, health.
// The server address comes from LARDER_URL (default
// http://localhost:8080).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	ws "github.com/coder/websocket"

	"github.com/dukerupert/larder/internal/client"
	"github.com/dukerupert/larder/internal/model"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	baseURL := os.Getenv("LARDER_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	c := client.New(client.Config{BaseURL: baseURL})
	ctx := context.Background()

	var err error
	switch os.Args[1] {
	case "list":
		err = runList(ctx, c, os.Args[2:])
	case "get":
		err = runGet(ctx, c, os.Args[2:])
	case "add":
		err = runAdd(ctx, c, os.Args[2:])
	case "update":
		err = runUpdate(ctx, c, os.Args[2:])
	case "buy":
		err = runBuy(ctx, c, os.Args[2:])
	case "delete":
		err = runDelete(ctx, c, os.Args[2:])
	case "stats":
		err = runStats(ctx, c)
	case "watch":
		err = runWatch(ctx, baseURL)
	case "health":
		err = c.Health(ctx)
		if err == nil {
			fmt.Println("ok")
		}
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		var apiErr *client.Error
		if errors.As(err, &apiErr) {
			fmt.Fprintln(os.Stderr, apiErr.UserMessage())
			for _, v := range apiErr.Violations {
				fmt.Fprintf(os.Stderr, "  - %s\n", v)
			}
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: larderctl <list|get|add|update|buy|delete|stats|watch|health> [flags]")
}

func runList(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "substring match on name or memo")
	category := fs.String("category", "", "filter by category")
	priority := fs.String("priority", "", "filter by priority")
	purchased := fs.String("purchased", "", "true, false, or all")
	sortKey := fs.String("sort", "", "createdAt, deadline, priority, name, or stock")
	order := fs.String("order", "", "asc or desc")
	fs.Parse(args)

	items, err := c.GetItems(ctx, client.ListOptions{
		Search:    *search,
		Category:  *category,
		Priority:  *priority,
		Purchased: *purchased,
		Sort:      *sortKey,
		Order:     *order,
	})
	if err != nil {
		return err
	}
	for _, item := range items {
		printItemLine(item)
	}
	return nil
}

func runGet(ctx context.Context, c *client.Client, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	item, err := c.GetItem(ctx, id)
	if err != nil {
		return err
	}
	printItemDetail(*item)
	return nil
}

func itemFlags(fs *flag.FlagSet) *model.ItemInput {
	var in model.ItemInput
	fs.Func("name", "item name", func(s string) error { in.Name = &s; return nil })
	fs.Func("quantity", "quantity to buy", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		in.Quantity = &n
		return nil
	})
	fs.Func("stock", "amount on hand", func(s string) error {
		n, err := strconv.Atoi(s)
		if err != nil {
			return err
		}
		in.Stock = &n
		return nil
	})
	fs.Func("memo", "free-form note", func(s string) error { in.Memo = &s; return nil })
	fs.Func("category", "food, daily, drink, snack, frozen, or other", func(s string) error { in.Category = &s; return nil })
	fs.Func("priority", "high, medium, or low", func(s string) error { in.Priority = &s; return nil })
	fs.Func("deadline", "YYYY-MM-DD", func(s string) error { in.Deadline = &s; return nil })
	fs.Func("purchased", "true or false", func(s string) error {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return err
		}
		in.Purchased = &b
		return nil
	})
	return &in
}

func runAdd(ctx context.Context, c *client.Client, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	in := itemFlags(fs)
	fs.Parse(args)

	item, err := c.CreateItem(ctx, *in)
	if err != nil {
		return err
	}
	fmt.Printf("created #%d\n", item.ID)
	return nil
}

func runUpdate(ctx context.Context, c *client.Client, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: larderctl update <id> [flags]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid id %q", args[0])
	}

	fs := flag.NewFlagSet("update", flag.ExitOnError)
	in := itemFlags(fs)
	fs.Parse(args[1:])

	item, err := c.UpdateItem(ctx, id, *in)
	if err != nil {
		return err
	}
	printItemDetail(*item)
	return nil
}

func runBuy(ctx context.Context, c *client.Client, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	purchased := true
	item, err := c.UpdateItem(ctx, id, model.ItemInput{Purchased: &purchased})
	if err != nil {
		return err
	}
	fmt.Printf("purchased %s\n", item.Name)
	return nil
}

func runDelete(ctx context.Context, c *client.Client, args []string) error {
	id, err := idArg(args)
	if err != nil {
		return err
	}
	if err := c.DeleteItem(ctx, id); err != nil {
		return err
	}
	fmt.Printf("deleted #%d\n", id)
	return nil
}

func runStats(ctx context.Context, c *client.Client) error {
	stats, err := c.GetStats(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("total %d, purchased %d, remaining %d, low stock %d, urgent %d\n",
		stats.Total, stats.Purchased, stats.Remaining, stats.LowStock, stats.Urgent)
	for _, cc := range stats.ByCategory {
		fmt.Printf("  %-8s %d\n", cc.Category, cc.Count)
	}
	for _, pc := range stats.ByPriority {
		fmt.Printf("  %-8s %d (to buy)\n", pc.Priority, pc.Count)
	}
	return nil
}

// runWatch tails the live item-change feed until interrupted.
func runWatch(ctx context.Context, baseURL string) error {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/ws"
	conn, _, err := ws.Dial(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", wsURL, err)
	}
	defer conn.Close(ws.StatusNormalClosure, "")

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		var msg struct {
			Type string      `json:"type"`
			ID   int64       `json:"id"`
			Item *model.Item `json:"item"`
		}
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Item != nil {
			fmt.Printf("%s #%d %s\n", msg.Type, msg.ID, msg.Item.Name)
		} else {
			fmt.Printf("%s #%d\n", msg.Type, msg.ID)
		}
	}
}

func idArg(args []string) (int64, error) {
	if len(args) < 1 {
		return 0, fmt.Errorf("missing id argument")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

func printItemLine(item model.Item) {
	mark := " "
	if item.Purchased {
		mark = "x"
	}
	deadline := ""
	if item.Deadline != nil {
		deadline = " due " + *item.Deadline
	}
	fmt.Printf("[%s] #%-4d %-24s x%d (stock %d) %s/%s%s\n",
		mark, item.ID, item.Name, item.Quantity, item.Stock, item.Category, item.Priority, deadline)
}

func printItemDetail(item model.Item) {
	printItemLine(item)
	if item.Memo != nil {
		fmt.Printf("      memo: %s\n", *item.Memo)
	}
	fmt.Printf("      created %s", item.CreatedAt.Format("2006-01-02 15:04"))
	if item.UpdatedAt != nil {
		fmt.Printf(", updated %s", item.UpdatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Println()
}
