package usecases

import (
	"fmt"

	"github.com/samirrijal/reproj/internal/core/domain"
)

const (
	defWGS84     = "+proj=longlat +datum=WGS84 +no_defs"
	defWebMerc   = "+proj=merc +a=6378137 +b=6378137 +lat_ts=0.0 +lon_0=0.0 +x_0=0.0 +y_0=0 +k=1.0 +units=m +nadgrids=@null +no_defs"
	grs80ZeroTWG = "+ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +units=m +no_defs"
)

// builtinEntries is the compiled-in CRS table. Axis order is stated per row
// and must agree with the definition's units.
func builtinEntries() []domain.CRSEntry {
	entries := []domain.CRSEntry{
		{ID: "EPSG:4326", Title: "WGS 84", Definition: defWGS84, Axis: domain.Geographic},
		{ID: "EPSG:4258", Title: "ETRS89", Definition: "+proj=longlat +ellps=GRS80 +towgs84=0,0,0,0,0,0,0 +no_defs", Axis: domain.Geographic},
		{ID: "EPSG:4269", Title: "NAD83", Definition: "+proj=longlat +datum=NAD83 +no_defs", Axis: domain.Geographic},
		{ID: "EPSG:3857", Title: "WGS 84 / Pseudo-Mercator", Definition: defWebMerc, Axis: domain.Projected},
		{ID: "EPSG:900913", Title: "Google Maps Global Mercator", Definition: defWebMerc, Axis: domain.Projected},
		{ID: "EPSG:3395", Title: "WGS 84 / World Mercator", Definition: "+proj=merc +lon_0=0 +k=1 +x_0=0 +y_0=0 +datum=WGS84 +units=m +no_defs", Axis: domain.Projected},
		{ID: "EPSG:27700", Title: "OSGB 1936 / British National Grid", Definition: "+proj=tmerc +lat_0=49 +lon_0=-2 +k=0.9996012717 +x_0=400000 +y_0=-100000 +ellps=airy +towgs84=446.448,-125.157,542.06,0.15,0.247,0.842,-20.489 +units=m +no_defs", Axis: domain.Projected},
		{ID: "EPSG:2154", Title: "RGF93 / Lambert-93", Definition: "+proj=lcc +lat_1=49 +lat_2=44 +lat_0=46.5 +lon_0=3 +x_0=700000 +y_0=6600000 " + grs80ZeroTWG, Axis: domain.Projected},
		{ID: "EPSG:5070", Title: "NAD83 / Conus Albers", Definition: "+proj=aea +lat_1=29.5 +lat_2=45.5 +lat_0=23 +lon_0=-96 +x_0=0 +y_0=0 +datum=NAD83 +units=m +no_defs", Axis: domain.Projected},
		{ID: "EPSG:25832", Title: "ETRS89 / UTM zone 32N", Definition: "+proj=utm +zone=32 " + grs80ZeroTWG, Axis: domain.Projected},
		{ID: "EPSG:31467", Title: "DHDN / 3-degree Gauss-Kruger zone 3", Definition: "+proj=tmerc +lat_0=0 +lon_0=9 +k=1 +x_0=3500000 +y_0=0 +ellps=bessel +towgs84=598.1,73.7,418.2,0.202,0.045,-2.455,6.7 +units=m +no_defs", Axis: domain.Projected},
		{ID: "EPSG:5181", Title: "Korea 2000 / Central Belt", Definition: "+proj=tmerc +lat_0=38 +lon_0=127 +k=1 +x_0=200000 +y_0=500000 " + grs80ZeroTWG, Axis: domain.Projected},
		{ID: "EPSG:5186", Title: "Korea 2000 / Central Belt 2010", Definition: "+proj=tmerc +lat_0=38 +lon_0=127 +k=1 +x_0=200000 +y_0=600000 " + grs80ZeroTWG, Axis: domain.Projected},
		{ID: "EPSG:5179", Title: "Korea 2000 / Unified CS", Definition: "+proj=tmerc +lat_0=38 +lon_0=127.5 +k=0.9996 +x_0=1000000 +y_0=2000000 " + grs80ZeroTWG, Axis: domain.Projected},
	}

	// TUREF / TM27 .. TM45
	for i, lon := range []int{27, 30, 33, 36, 39, 42, 45} {
		code := 5253 + i
		entries = append(entries, domain.CRSEntry{
			ID:         fmt.Sprintf("EPSG:%d", code),
			Title:      fmt.Sprintf("TUREF / TM%d", lon),
			Definition: fmt.Sprintf("+proj=tmerc +lat_0=0 +lon_0=%d +k=1 +x_0=500000 +y_0=0 %s", lon, grs80ZeroTWG),
			Axis:       domain.Projected,
		})
	}

	for zone := 1; zone <= 60; zone++ {
		entries = append(entries,
			domain.CRSEntry{
				ID:         fmt.Sprintf("EPSG:%d", 32600+zone),
				Title:      fmt.Sprintf("WGS 84 / UTM zone %dN", zone),
				Definition: fmt.Sprintf("+proj=utm +zone=%d +datum=WGS84 +units=m +no_defs", zone),
				Axis:       domain.Projected,
			},
			domain.CRSEntry{
				ID:         fmt.Sprintf("EPSG:%d", 32700+zone),
				Title:      fmt.Sprintf("WGS 84 / UTM zone %dS", zone),
				Definition: fmt.Sprintf("+proj=utm +zone=%d +south +datum=WGS84 +units=m +no_defs", zone),
				Axis:       domain.Projected,
			},
		)
	}
	return entries
}
