package mcpserver

// CatalogFormatContract documents the CSV format the food catalog is
// imported from. Exposed as an MCP resource so clients can explain the
// expected data to users.
const CatalogFormatContract = `# Forage Catalog Format

The food catalog is imported from CSV rows with the following cells:

| cell | meaning  | notes                                          |
|------|----------|------------------------------------------------|
| 0    | name     | canonical food name, case-insensitive          |
| 1    | category | free-form grouping, e.g. "fruit"               |
| 2    | synonyms | optional; separated by any punctuation run     |

Rules:

- Rows with fewer than two cells are dropped with a warning.
- Names and synonyms are trimmed and lower-cased on import.
- Synonyms are split on any run of characters that are neither letters nor
  spaces, so "green apple, granny smith; GrannySmith" yields three synonyms.
- A repeated name is kept in the catalog but lookups resolve to the
  first-seen entry.

Example:

    apple,fruit,"green apple, granny smith"
    banana,fruit,
    peanut butter,spreads,peanut
`
