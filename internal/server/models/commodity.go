package models

// CommodityType is a row of the commodity lookup table.
type CommodityType struct {
	CommodityType string `json:"commodityType"`
}
