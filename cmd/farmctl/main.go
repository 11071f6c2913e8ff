package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/ashiruhammed/farmstarter/internal/auth"
	"github.com/ashiruhammed/farmstarter/internal/store"
)

// farmctl pokes at the storefront's KV state: seed the user registry,
// inspect the cart or session, clear either one.
func main() {
	app := &cli.App{
		Name:  "farmctl",
		Usage: "inspect and maintain FarmStarter storefront state",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "redis",
				Usage:   "redis address",
				Value:   "localhost:6379",
				EnvVars: []string{"REDIS_ADDR"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "seed-users",
				Usage: "write the default user registry when none exists",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Value: "assets/users.json", Usage: "seed file"},
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing registry"},
				},
				Action: seedUsers,
			},
			{
				Name:   "show-cart",
				Usage:  "print the persisted cart snapshot",
				Action: showKey(store.KeyCart, "cart is empty"),
			},
			{
				Name:   "show-users",
				Usage:  "print the user registry",
				Action: showKey(store.KeyUsers, "registry not seeded yet"),
			},
			{
				Name:   "show-session",
				Usage:  "print the current session record",
				Action: showKey(store.KeySession, "no session"),
			},
			{
				Name:   "clear-cart",
				Usage:  "delete the persisted cart snapshot",
				Action: deleteKey(store.KeyCart),
			},
			{
				Name:   "clear-session",
				Usage:  "log the current user out",
				Action: deleteKey(store.KeySession),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func open(c *cli.Context) *store.Redis {
	return store.NewRedis(c.String("redis"))
}

func seedUsers(c *cli.Context) error {
	ctx := context.Background()
	st := open(c)
	defer st.Close()

	if !c.Bool("force") {
		if _, err := st.Get(ctx, store.KeyUsers); err == nil {
			return errors.New("registry already exists, use --force to overwrite")
		}
	}

	users, err := auth.LoadSeedFile(c.String("file"))
	if err != nil {
		return err
	}
	b, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if err := st.Set(ctx, store.KeyUsers, b); err != nil {
		return err
	}
	fmt.Printf("seeded %d users\n", len(users))
	return nil
}

func showKey(key, emptyMsg string) cli.ActionFunc {
	return func(c *cli.Context) error {
		st := open(c)
		defer st.Close()

		b, err := st.Get(context.Background(), key)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Println(emptyMsg)
			return nil
		}
		if err != nil {
			return err
		}

		var pretty json.RawMessage = b
		out, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			fmt.Println(string(b))
			return nil
		}
		fmt.Println(string(out))
		return nil
	}
}

func deleteKey(key string) cli.ActionFunc {
	return func(c *cli.Context) error {
		st := open(c)
		defer st.Close()
		return st.Delete(context.Background(), key)
	}
}
