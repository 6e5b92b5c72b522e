// Package google provides shared infrastructure for the Google Workspace
// facades in the drive, gmail and sheets subpackages:
//   - OAuth2 token sources built from stored client credentials and tokens
//   - Service factories for creating Google API clients
//   - Error classification for common Google API errors (401, 403, 404, 429)
//   - Rate limiting to respect Google API quotas
//
// # Usage
//
//	ts, err := google.NewTokenSource(ctx, creds, token)
//	svc, err := google.NewSheetsService(ctx, ts)
//	sheet := sheets.New(svc)
package google
