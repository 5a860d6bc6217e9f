package order

import "github.com/google/uuid"

// QueryOrdersModel represents filter parameters for querying orders
type QueryOrdersModel struct {
	Ids            []uuid.UUID `json:"ids,omitempty"`
	CustomerEmails []string    `json:"customerEmails,omitempty"`
	Confirmed      *bool       `json:"confirmed,omitempty"`
	Page           int         `json:"page,omitempty"`
	PageSize       int         `json:"pageSize,omitempty"`
	Limit          int         `json:"limit,omitempty"`
	Offset         int         `json:"offset,omitempty"`
}
