package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/rpa-cli/internal/connectors/gcp/bigquery"
	"github.com/custodia-labs/rpa-cli/internal/connectors/gcp/firestore"
	"github.com/custodia-labs/rpa-cli/internal/core/domain"
)

var (
	gcpProject string
	bqParams   []string
)

var bqCmd = &cobra.Command{
	Use:   "bq",
	Short: "Run BigQuery queries",
	Long: `Queries BigQuery with application default credentials. Service account
JSON passed in GOOGLE_APPLICATION_CREDENTIALS_CONTENT is written to the
workspace first.`,
}

var bqQueryCmd = &cobra.Command{
	Use:   "query <sql>",
	Short: "Run a query and print the rows as JSON",
	Long: `Runs a standard SQL query. Named parameters are passed with
--param name=value and referenced as @name.`,
	Args: cobra.ExactArgs(1),
	RunE: runBQQuery,
}

var firestoreCmd = &cobra.Command{
	Use:   "firestore",
	Short: "Read Firestore documents",
}

var firestoreGetCmd = &cobra.Command{
	Use:   "get <collection-path> <document-id>",
	Short: "Print a document as JSON",
	Args:  cobra.ExactArgs(2),
	RunE:  runFirestoreGet,
}

func init() {
	firestoreGetCmd.Flags().StringVar(&gcpProject, "project", "", "project ID (default detected from credentials)")
	firestoreCmd.AddCommand(firestoreGetCmd)
	rootCmd.AddCommand(firestoreCmd)

	bqQueryCmd.Flags().StringVar(&gcpProject, "project", "", "project ID (default detected from credentials)")
	bqQueryCmd.Flags().StringArrayVarP(&bqParams, "param", "p", nil, "named parameter as name=value")
	bqCmd.AddCommand(bqQueryCmd)
	rootCmd.AddCommand(bqCmd)
}

// parseParams turns name=value pairs into query parameters.
func parseParams(pairs []string) (map[string]any, error) {
	params := make(map[string]any, len(pairs))
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q must be name=value: %w", p, domain.ErrInvalidInput)
		}
		params[name] = value
	}
	return params, nil
}

func runBQQuery(cmd *cobra.Command, args []string) error {
	params, err := parseParams(bqParams)
	if err != nil {
		return err
	}

	c, err := bigquery.New(cmd.Context(), gcpProject, googleClientOptions...)
	if err != nil {
		return err
	}
	defer c.Close()

	rows, err := c.Query(cmd.Context(), args[0], params)
	if err != nil {
		return err
	}
	return printJSON(cmd, rows)
}

func runFirestoreGet(cmd *cobra.Command, args []string) error {
	c, err := firestore.New(cmd.Context(), gcpProject, googleClientOptions...)
	if err != nil {
		return err
	}
	defer c.Close()

	col := c.Collection(args[0])
	if col == nil {
		return fmt.Errorf("%q is not a collection path: %w", args[0], domain.ErrInvalidInput)
	}
	snap, err := col.Doc(args[1]).Get(cmd.Context())
	if err != nil {
		return err
	}
	return printJSON(cmd, snap.Data())
}
