// Package habit parses, validates, and persists the check-in data file.
//
// The data file (clock_in_data.json) holds the start date and an ordered
// list of daily tasks:
//
//	{
//	  "start_date": "2024-01-01",
//	  "tasks": [
//	    {
//	      "name": "Read one page",
//	      "days": 0,
//	      "completed": ["2024-01-01", "2024-01-02"],
//	      "notes": {"2024-01-02": "chapter 3"}
//	    }
//	  ]
//	}
//
// # Validation
//
// Files are checked against an embedded JSON Schema (draft 2020-12) before
// they are decoded. A file that is not JSON, or that has the wrong shape, is
// reported as ErrDataCorrupt and left on disk untouched. Missing "completed"
// and "notes" keys are filled with empty values; the "days" field is carried
// for compatibility and never read.
//
// Entries in "completed" are plain strings. Malformed dates are tolerated and
// skipped by callers that need parsed dates.
//
// # File Format
//
// When writing data files, the package uses:
//   - 2-space indentation
//   - Trailing newline
//   - Unescaped non-ASCII and HTML characters
//   - Atomic replace via a temporary file in the same directory
package habit
