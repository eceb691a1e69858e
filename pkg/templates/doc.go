// Package templates turns a notification type and a context map into the
// title and body shown to users.
//
// Each type has a Template in a Catalog. Placeholders take two forms:
//
//	{activity_name}                 value of data["activity_name"], kept verbatim when missing
//	{project_name || "sin proyecto"} value when set and non-empty, the literal otherwise
//
// Only a single identifier may appear left of "||". Any other expression
// renders the literal, so templates can never evaluate arbitrary code.
// Dates are printed in the renderer's language and time zone, decimals with
// golang.org/x/text number formatting.
//
// The built-in catalog can be overridden per type with LoadCatalog.
package templates
