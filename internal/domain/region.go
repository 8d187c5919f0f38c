package domain

// Region is one Indonesian administrative area (province, regency,
// district or village) as served by the wilayah API.
type Region struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
