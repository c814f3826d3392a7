// Package regression fits ordinary least squares models for the
// structural-break analysis and reports coefficient inference and
// goodness-of-fit statistics.
package regression
