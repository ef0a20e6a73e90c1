package model

type StatusResponse struct {
	UnitID   string   `json:"unit_id"`
	Role     string   `json:"role"`
	Boss     bool     `json:"boss"`
	Running  bool     `json:"running"`
	Section  uint16   `json:"section"`
	Bar      uint16   `json:"bar"`
	Beat     uint8    `json:"beat"`
	Seq      uint32   `json:"seq"`
	Desynced bool     `json:"desynced"`
	Notices  []string `json:"notices,omitempty"`
}
