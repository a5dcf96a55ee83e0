package excel

// RawSheet is one sheet as read from the workbook: a header row and the
// raw cell text of every data row.
type RawSheet struct {
	Label   string
	Headers []string
	Rows    [][]string
}

// Workbook is the read side of a spreadsheet file
type Workbook interface {
	// SheetNames lists sheet labels in workbook order
	SheetNames() []string
	// ReadSheet returns the raw rows of one sheet
	ReadSheet(label string) (*RawSheet, error)
	Close() error
}
