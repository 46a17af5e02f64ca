package httpapi

import "net/http"

// productSector describes one sector's cadence for GET /api/goes/products
// (§6).
type productSector struct {
	Name         string `json:"name"`
	CadenceMins  int    `json:"cadence_minutes"`
}

// productBand describes one ABI band's wavelength and common name.
type productBand struct {
	Code        string  `json:"code"`
	WavelengthUM float64 `json:"wavelength_um"`
	Name        string  `json:"name"`
}

var productsResponse = struct {
	Satellites []string        `json:"satellites"`
	Sectors    []productSector `json:"sectors"`
	Bands      []productBand   `json:"bands"`
}{
	Satellites: []string{"GOES-16", "GOES-18", "GOES-19"},
	Sectors: []productSector{
		{Name: "FullDisk", CadenceMins: 10},
		{Name: "CONUS", CadenceMins: 5},
		{Name: "Mesoscale1", CadenceMins: 1},
		{Name: "Mesoscale2", CadenceMins: 1},
	},
	Bands: []productBand{
		{Code: "C01", WavelengthUM: 0.47, Name: "Blue"},
		{Code: "C02", WavelengthUM: 0.64, Name: "Red"},
		{Code: "C03", WavelengthUM: 0.86, Name: "Veggie"},
		{Code: "C04", WavelengthUM: 1.37, Name: "Cirrus"},
		{Code: "C05", WavelengthUM: 1.6, Name: "Snow/Ice"},
		{Code: "C06", WavelengthUM: 2.2, Name: "Cloud Particle Size"},
		{Code: "C07", WavelengthUM: 3.9, Name: "Shortwave Window"},
		{Code: "C08", WavelengthUM: 6.2, Name: "Upper-Level Water Vapor"},
		{Code: "C09", WavelengthUM: 6.9, Name: "Mid-Level Water Vapor"},
		{Code: "C10", WavelengthUM: 7.3, Name: "Lower-Level Water Vapor"},
		{Code: "C11", WavelengthUM: 8.4, Name: "Cloud-Top Phase"},
		{Code: "C12", WavelengthUM: 9.6, Name: "Ozone"},
		{Code: "C13", WavelengthUM: 10.3, Name: "Clean IR Longwave"},
		{Code: "C14", WavelengthUM: 11.2, Name: "IR Longwave"},
		{Code: "C15", WavelengthUM: 12.3, Name: "Dirty Longwave"},
		{Code: "C16", WavelengthUM: 13.3, Name: "CO2 Longwave"},
	},
}

// handleGoesProducts returns the static satellite/sector/band catalog
// (§6).
func (s *Server) handleGoesProducts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, productsResponse)
}
