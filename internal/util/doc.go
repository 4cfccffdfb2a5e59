// Package util provides common utility functions used across the module.
//
// These utilities handle string manipulation and URL formatting shared by
// the settings accessor, the GitHub REST client and the flow orchestrator.
//
// Key utilities:
//   - SafeTruncate: Safely truncates strings for logging upstream payloads
//   - WithTrailingSlash: Normalizes base URLs so paths can be appended
//   - SplitAndTrim: Splits comma-separated configuration values
package util
