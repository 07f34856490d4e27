// Command blogstats fetches the blog list from a running server and prints its aggregated
// statistics as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/sushihentaime/bloglist/internal/blogservice"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	err := run(os.Args[1:], os.Stdout)
	if err != nil {
		logger.Error("blogstats failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	fs := flag.NewFlagSet("blogstats", flag.ContinueOnError)
	baseURL := fs.String("url", "http://localhost:3003", "base URL of the blog list server")
	timeout := fs.Duration("timeout", 10*time.Second, "request timeout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client := resty.New().SetTimeout(*timeout)

	blogs, err := fetchBlogs(client, *baseURL)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "\t")
	return enc.Encode(blogservice.Summarize(blogs))
}

func fetchBlogs(client *resty.Client, baseURL string) ([]blogservice.Blog, error) {
	var blogs []blogservice.Blog

	resp, err := client.R().
		SetHeader("Accept", "application/json").
		SetResult(&blogs).
		Get(strings.TrimRight(baseURL, "/") + "/api/blogs")
	if err != nil {
		return nil, fmt.Errorf("could not fetch blogs: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("could not fetch blogs: unexpected status %s", resp.Status())
	}

	return blogs, nil
}
