// Package export writes a wall's posts as a two-column CSV of post text and
// photo URL.
package export
