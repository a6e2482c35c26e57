package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/and161185/leadgate/internal/convert"
	"github.com/spf13/cobra"
)

// app carries global flags shared by every subcommand.
type app struct {
	addr    string
	timeout time.Duration
	hc      *http.Client
}

func (a *app) client(authed bool) (*apiClient, error) {
	tok := ""
	if authed {
		var err error
		if tok, err = loadToken(); err != nil {
			return nil, err
		}
	}
	return newClient(a.addr, tok, a.hc), nil
}

func (a *app) ctx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), a.timeout)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "lgctl",
		Short:         "Administer a leadgate server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	defAddr := os.Getenv("LEADGATE_ADDR")
	if defAddr == "" {
		defAddr = "http://localhost:8080"
	}
	root.PersistentFlags().StringVar(&a.addr, "addr", defAddr, "server base URL (env LEADGATE_ADDR)")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		versionCmd(),
		loginCmd(a),
		resourcesCmd(a),
		postsCmd(a),
	)
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lgctl %s (%s)\n", version, buildDate)
		},
	}
}

func loginCmd(a *app) *cobra.Command {
	var user, pass string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in as an admin and store the access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" || pass == "" {
				return errors.New("need -u and -p")
			}
			c, _ := a.client(false)
			ctx, cancel := a.ctx(cmd)
			defer cancel()

			var out convert.Tokens
			if err := c.do(ctx, http.MethodPost, "/api/admin/login", convert.LoginRequest{Username: user, Password: pass}, &out); err != nil {
				return err
			}
			exp := tokenExpiry(out.AccessToken, time.Now().Add(15*time.Minute))
			if out.ExpiresAt != nil {
				exp = *out.ExpiresAt
			}
			if err := saveToken(out.AccessToken, exp); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVarP(&user, "username", "u", "", "admin username")
	cmd.Flags().StringVarP(&pass, "password", "p", "", "admin password")
	return cmd
}

func resourcesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "resources", Short: "Manage gated resources"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all resources with download counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out []convert.AdminResource
			if err := a.call(cmd, http.MethodGet, "/api/admin/resources", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	var in convert.ResourceInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a resource",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out convert.AdminResource
			if err := a.call(cmd, http.MethodPost, "/api/admin/resources", in, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	create.Flags().StringVar(&in.Slug, "slug", "", "url slug")
	create.Flags().StringVar(&in.Title, "title", "", "title")
	create.Flags().StringVar(&in.Summary, "summary", "", "short description")
	create.Flags().StringVar(&in.FileURL, "file-url", "", "where the file is served from")
	create.Flags().BoolVar(&in.Published, "published", false, "publish immediately")

	leads := &cobra.Command{
		Use:   "leads <id>",
		Short: "List leads captured for a resource",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out []convert.Lead
			if err := a.call(cmd, http.MethodGet, "/api/admin/resources/"+url.PathEscape(args[0])+"/leads", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.AddCommand(list, create,
		publishCmd(a, "/api/admin/resources/", true),
		publishCmd(a, "/api/admin/resources/", false),
		leads,
	)
	return cmd
}

func postsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "posts", Short: "Manage blog posts"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List all posts, drafts included",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var out []convert.PostSummary
			if err := a.call(cmd, http.MethodGet, "/api/admin/posts", nil, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	var in convert.PostInput
	var bodyFile string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a draft post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if bodyFile == "" {
				return errors.New("need --body-file")
			}
			b, err := readAll(cmd.InOrStdin(), bodyFile)
			if err != nil {
				return err
			}
			in.Body = string(b)
			var out convert.Post
			if err := a.call(cmd, http.MethodPost, "/api/admin/posts", in, &out); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	create.Flags().StringVar(&in.Slug, "slug", "", "url slug")
	create.Flags().StringVar(&in.Title, "title", "", "title")
	create.Flags().StringVar(&in.Excerpt, "excerpt", "", "list excerpt")
	create.Flags().StringVar(&bodyFile, "body-file", "", "markdown body file ('-'=stdin)")

	cmd.AddCommand(list, create,
		publishCmd(a, "/api/admin/posts/", true),
		publishCmd(a, "/api/admin/posts/", false),
	)
	return cmd
}

func publishCmd(a *app, prefix string, publish bool) *cobra.Command {
	verb := "unpublish"
	if publish {
		verb = "publish"
	}
	return &cobra.Command{
		Use:   verb + " <id>",
		Short: "Mark as " + verb + "ed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.call(cmd, http.MethodPost, prefix+url.PathEscape(args[0])+"/"+verb, nil, nil); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}

// call runs an authenticated request bounded by --timeout.
func (a *app) call(cmd *cobra.Command, method, path string, in, out any) error {
	c, err := a.client(true)
	if err != nil {
		return err
	}
	ctx, cancel := a.ctx(cmd)
	defer cancel()
	return c.do(ctx, method, path, in, out)
}

func readAll(stdin io.Reader, p string) ([]byte, error) {
	if p == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(p)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
