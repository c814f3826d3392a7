// Package render draws the report charts and tables as static images with
// gonum/plot. Every call takes a Style; the package never mutates
// gonum/plot defaults, so renders are reproducible for a given style and input.
package render
