// Package report downloads the marine weather report and turns the product
// page into plain text for the extractor.
package report
