// Package forecast validates commodity labels and proxies price predictions
// to the external prediction service.
package forecast

import (
	"net/url"
	"sort"

	"github.com/dmitrijs2005/agritrack/internal/common"
)

// Commodity is a member of the closed set of commodities the prediction
// service understands. The zero value is not a valid commodity.
type Commodity struct {
	label string
}

var (
	BawangMerah        = Commodity{"Bawang Merah"}
	BawangPutihBonggol = Commodity{"Bawang Putih Bonggol"}
	BerasMedium        = Commodity{"Beras Medium"}
	BerasPremium       = Commodity{"Beras Premium"}
	CabaiMerahKeriting = Commodity{"Cabai Merah Keriting"}
	CabaiRawitMerah    = Commodity{"Cabai Rawit Merah"}
	DagingAyamRas      = Commodity{"Daging Ayam Ras"}
	DagingSapiMurni    = Commodity{"Daging Sapi Murni"}
	GulaKonsumsi       = Commodity{"Gula Konsumsi"}
	JagungTkPeternak   = Commodity{"Jagung Tk Peternak"}
	KedelaiBijiKering  = Commodity{"Kedelai Biji Kering (Impor)"}
	MinyakGorengCurah  = Commodity{"Minyak Goreng Curah"}
	TelurAyamRas       = Commodity{"Telur Ayam Ras"}
	TepungTeriguCurah  = Commodity{"Tepung Terigu (Curah)"}
)

var commodities = map[string]Commodity{}

func init() {
	for _, c := range []Commodity{
		BawangMerah, BawangPutihBonggol, BerasMedium, BerasPremium,
		CabaiMerahKeriting, CabaiRawitMerah, DagingAyamRas, DagingSapiMurni,
		GulaKonsumsi, JagungTkPeternak, KedelaiBijiKering, MinyakGorengCurah,
		TelurAyamRas, TepungTeriguCurah,
	} {
		commodities[c.label] = c
	}
}

// ParseCommodity returns the commodity with the exact label, or a
// validation error naming commodityType when the label is unknown.
func ParseCommodity(label string) (Commodity, error) {
	c, ok := commodities[label]
	if !ok {
		return Commodity{}, common.Invalid("commodityType", "unknown commodity")
	}
	return c, nil
}

func (c Commodity) String() string { return c.label }

// PathSegment is the percent-encoded label used in the upstream URL path.
func (c Commodity) PathSegment() string {
	return url.PathEscape(c.label)
}

// labels lists every known commodity label in sorted order.
func labels() []string {
	out := make([]string, 0, len(commodities))
	for l := range commodities {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
