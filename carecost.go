// Package carecost locates medical-procedure price disclosures on hospital
// websites. It crawls each hospital site breadth-first within a depth and
// page budget and extracts dollar amounts associated with billing (CPT)
// codes from page text, HTML tables, and linked machine-readable files.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, excelize/).
package carecost
