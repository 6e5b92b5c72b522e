package cli

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/core/domain"
	"github.com/custodia-labs/rpa-cli/internal/request"
)

var (
	fetchMethod  string
	fetchHeaders []string
	fetchData    string
	fetchOutput  string
)

// fetchHTTPClient is used by the fetch command. Overridable in tests.
var fetchHTTPClient *http.Client

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Send an HTTP request",
	Long: `Sends an HTTP request and prints the response body. With --output the
body is streamed into the workspace instead and only replaces the target
file once fully received.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchMethod, "method", "X", http.MethodGet, "request method")
	fetchCmd.Flags().StringArrayVarP(&fetchHeaders, "header", "H", nil, `request header as "Name: value"`)
	fetchCmd.Flags().StringVarP(&fetchData, "data", "d", "", "request body")
	fetchCmd.Flags().StringVarP(&fetchOutput, "output", "o", "", "save the body to this workspace file")
	rootCmd.AddCommand(fetchCmd)
}

func parseHeaders(lines []string) (http.Header, error) {
	h := make(http.Header, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("header %q must be \"Name: value\": %w", line, domain.ErrInvalidInput)
		}
		h.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	}
	return h, nil
}

func runFetch(cmd *cobra.Command, args []string) error {
	header, err := parseHeaders(fetchHeaders)
	if err != nil {
		return err
	}
	c := request.New(fetchHTTPClient, workspace())

	if fetchOutput != "" {
		res, err := c.Download(cmd.Context(), fetchOutput, args[0], header)
		if err != nil {
			return err
		}
		cmd.Printf("%s -> %s\n", res.Status, fetchOutput)
		return nil
	}

	var body io.Reader
	if fetchData != "" {
		body = strings.NewReader(fetchData)
	}
	res, err := c.Fetch(cmd.Context(), strings.ToUpper(fetchMethod), args[0], body, header)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if _, err := io.Copy(cmd.OutOrStdout(), res.Body); err != nil {
		return err
	}
	if res.StatusCode >= 400 {
		return fmt.Errorf("%s %s: %s", strings.ToUpper(fetchMethod), args[0], res.Status)
	}
	return nil
}
