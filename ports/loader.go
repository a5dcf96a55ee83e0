package ports

import (
	"sheetagg/domain/colindex"
	"sheetagg/domain/table"
)

// LoaderPort turns a workbook into one merged, timestamp-keyed table
type LoaderPort interface {
	// Load reads the workbook at path and registers each produced column in index
	Load(path string, index *colindex.Index) (*table.MergedTable, error)
}
