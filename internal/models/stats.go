package models

type UserStats struct {
	TotalUsers      int     `json:"totalUsers"`
	AdminCount      int     `json:"adminCount"`
	UserCount       int     `json:"userCount"`
	AdminPercentage float64 `json:"adminPercentage"`
}
