package models

// SegmentFilter represents filter parameters for listing saved segments
type SegmentFilter struct {
	Label    string `form:"label"`
	FileName string `form:"fileName"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// SegmentListResponse represents a paginated list of saved segments
type SegmentListResponse struct {
	Data       []SegmentEntry `json:"data"`
	Total      int64          `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
