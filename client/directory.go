package client

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
)

// Company is the directory-facing slice of a pharmaceutical company
type Company struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ShortName       string   `json:"shortName"`
	Category        string   `json:"category"`
	AverageRating   float64  `json:"averageRating"`
	FullAddress     string   `json:"fullAddress"`
	IsVerified      bool     `json:"isVerified"`
	Specializations []string `json:"specializations"`
}

// StockRef is one stock entry on a medicine, keyed by stockist id
type StockRef struct {
	Stockist string `json:"stockist"`
	Stock    int    `json:"stock"`
}

// Medicine is the directory-facing slice of a medicine
type Medicine struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	BrandName     string     `json:"brandName"`
	GenericName   string     `json:"genericName"`
	Company       string     `json:"company"`
	Category      string     `json:"category"`
	DosageForm    string     `json:"dosageForm"`
	AverageRating float64    `json:"averageRating"`
	TotalStock    int        `json:"totalStock"`
	Stockists     []StockRef `json:"stockists"`
	Price         struct {
		MRP float64 `json:"mrp"`
	} `json:"price"`
}

// DisplayName prefers the brand name over the generic product name.
func (m Medicine) DisplayName() string {
	if m.BrandName != "" {
		return m.BrandName
	}
	return m.Name
}

// Stockist is the directory-facing slice of a stockist
type Stockist struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	ContactPerson string  `json:"contactPerson"`
	Phone         string  `json:"phone"`
	AverageRating float64 `json:"averageRating"`
	FullAddress   string  `json:"fullAddress"`
	IsVerified    bool    `json:"isVerified"`
}

// Search filter toggles.
const (
	FilterAll      = "all"
	FilterCompany  = "company"
	FilterMedicine = "medicine"
	FilterStockist = "stockist"
)

// Entry is one stockist's row in the denormalized directory: the stockist
// plus the distinct company and medicine names it is associated with.
type Entry struct {
	StockistID   string   `json:"stockistId"`
	StockistName string   `json:"stockistName"`
	Address      string   `json:"address"`
	Phone        string   `json:"phone"`
	Rating       float64  `json:"rating"`
	Verified     bool     `json:"verified"`
	Companies    []string `json:"companies"`
	Medicines    []string `json:"medicines"`
}

// Directory holds the three independently fetched collections
type Directory struct {
	Companies []Company
	Medicines []Medicine
	Stockists []Stockist
}

// BuildDirectory joins the collections in memory: for each stockist, the
// medicines whose stock entries reference it, and through those medicines
// the distinct companies. The scan is O(stockists x medicines), fine at
// directory scale. Pure so it can run against cached data offline.
func BuildDirectory(d Directory) []Entry {
	companyNames := make(map[string]string, len(d.Companies))
	for _, c := range d.Companies {
		companyNames[c.ID] = c.Name
	}

	entries := make([]Entry, 0, len(d.Stockists))
	for _, s := range d.Stockists {
		companySet := map[string]struct{}{}
		medicineSet := map[string]struct{}{}
		for _, m := range d.Medicines {
			carried := false
			for _, ref := range m.Stockists {
				if ref.Stockist == s.ID {
					carried = true
					break
				}
			}
			if !carried {
				continue
			}
			medicineSet[m.DisplayName()] = struct{}{}
			if name, ok := companyNames[m.Company]; ok {
				companySet[name] = struct{}{}
			}
		}

		entry := Entry{
			StockistID:   s.ID,
			StockistName: s.Name,
			Address:      s.FullAddress,
			Phone:        s.Phone,
			Rating:       s.AverageRating,
			Verified:     s.IsVerified,
			Companies:    sortedKeys(companySet),
			Medicines:    sortedKeys(medicineSet),
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return strings.ToLower(entries[i].StockistName) < strings.ToLower(entries[j].StockistName)
	})
	return entries
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// SearchEntries filters the directory by a case-insensitive substring. The
// filter toggle picks which side of an entry the term matches against:
// the stockist's own name, its carried companies, or its carried medicines.
// FilterAll (or "") matches any of the three.
func SearchEntries(entries []Entry, filter, term string) []Entry {
	term = strings.ToLower(strings.TrimSpace(term))
	out := []Entry{}
	for _, e := range entries {
		if term == "" || matches(e, filter, term) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e Entry, filter, term string) bool {
	inStockist := strings.Contains(strings.ToLower(e.StockistName), term)
	switch filter {
	case FilterStockist:
		return inStockist
	case FilterCompany:
		return containsTerm(e.Companies, term)
	case FilterMedicine:
		return containsTerm(e.Medicines, term)
	default:
		return inStockist || containsTerm(e.Companies, term) || containsTerm(e.Medicines, term)
	}
}

func containsTerm(names []string, term string) bool {
	for _, name := range names {
		if strings.Contains(strings.ToLower(name), term) {
			return true
		}
	}
	return false
}

// LoadDirectory fetches all three collections concurrently. A failing
// collection degrades to an empty list so the rest of the directory still
// renders.
func (c *Client) LoadDirectory(ctx context.Context, q ListQuery) Directory {
	var (
		wg  sync.WaitGroup
		dir Directory
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		companies, _, err := c.ListCompanies(ctx, q)
		if err != nil {
			log.Printf("directory: companies unavailable: %v", err)
			return
		}
		dir.Companies = companies
	}()
	go func() {
		defer wg.Done()
		medicines, _, err := c.ListMedicines(ctx, q)
		if err != nil {
			log.Printf("directory: medicines unavailable: %v", err)
			return
		}
		dir.Medicines = medicines
	}()
	go func() {
		defer wg.Done()
		stockists, _, err := c.ListStockists(ctx, q)
		if err != nil {
			log.Printf("directory: stockists unavailable: %v", err)
			return
		}
		dir.Stockists = stockists
	}()
	wg.Wait()

	return dir
}
