// Command seed-demo loads a reproducible demo dataset: 8 locations, 30
// medical items and 60 days of synthetic daily stock history, written
// through the ledger so every row passes the continuity checks.
package main

import (
	"context"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"

	"medstock-agent/internal/config"
	"medstock-agent/internal/core"
	"medstock-agent/internal/db"
	"medstock-agent/internal/logger"
)

const (
	seedDays = 60
	randSeed = 42
)

type locationSeed struct {
	name    string
	typ     string
	region  string
	address string
	volume  string // high, medium, low
	reorder int    // days-of-stock threshold that triggers a delivery
}

type itemSeed struct {
	name     string
	category string
	unit     string
	leadTime int
	minStock int64
}

var locationSeeds = []locationSeed{
	{"Apollo Hospital - Mumbai", "hospital", "Maharashtra", "Tardeo, Mumbai, Maharashtra 400034", "high", 7},
	{"AIIMS - Delhi", "hospital", "Delhi", "Ansari Nagar, New Delhi, Delhi 110029", "high", 7},
	{"Manipal Clinic - Bangalore", "clinic", "Karnataka", "HAL 2nd Stage, Bangalore, Karnataka 560008", "medium", 7},
	{"City Hospital - Pune", "clinic", "Maharashtra", "Pimpri-Chinchwad, Pune, Maharashtra 411018", "medium", 5},
	{"Government Clinic - Chennai", "clinic", "Tamil Nadu", "T. Nagar, Chennai, Tamil Nadu 600017", "medium", 5},
	{"Primary Health Centre - Jaipur", "rural_clinic", "Rajasthan", "Mansarovar, Jaipur, Rajasthan 302020", "low", 3},
	{"Community Clinic - Lucknow", "rural_clinic", "Uttar Pradesh", "Gomti Nagar, Lucknow, Uttar Pradesh 226010", "low", 3},
	{"District Hospital - Patna", "rural_clinic", "Bihar", "Kankarbagh, Patna, Bihar 800020", "low", 3},
}

var itemSeeds = []itemSeed{
	{"Amoxicillin 500mg", "antibiotic", "tablets", 7, 500},
	{"Ciprofloxacin 500mg", "antibiotic", "tablets", 7, 300},
	{"Azithromycin 250mg", "antibiotic", "tablets", 5, 400},
	{"Doxycycline 100mg", "antibiotic", "tablets", 7, 250},
	{"Metronidazole 400mg", "antibiotic", "tablets", 5, 300},
	{"Cephalexin 500mg", "antibiotic", "tablets", 7, 200},
	{"Levofloxacin 500mg", "antibiotic", "tablets", 7, 150},
	{"Clindamycin 300mg", "antibiotic", "tablets", 7, 200},
	{"Paracetamol 500mg", "painkiller", "tablets", 3, 1000},
	{"Ibuprofen 400mg", "painkiller", "tablets", 5, 800},
	{"Diclofenac 50mg", "painkiller", "tablets", 5, 600},
	{"Aspirin 75mg", "painkiller", "tablets", 5, 500},
	{"Tramadol 50mg", "painkiller", "tablets", 7, 300},
	{"Naproxen 250mg", "painkiller", "tablets", 5, 400},
	{"Ketoprofen 100mg", "painkiller", "tablets", 7, 250},
	{"Vitamin C 500mg", "vitamin", "tablets", 10, 600},
	{"Vitamin D3 1000IU", "vitamin", "tablets", 10, 500},
	{"Vitamin B12 1000mcg", "vitamin", "tablets", 10, 400},
	{"Calcium 500mg", "vitamin", "tablets", 10, 700},
	{"Multivitamin", "vitamin", "tablets", 10, 500},
	{"Metformin 500mg", "diabetes", "tablets", 7, 800},
	{"Glimepiride 2mg", "diabetes", "tablets", 7, 400},
	{"Insulin Glargine", "diabetes", "vials", 14, 100},
	{"Sitagliptin 100mg", "diabetes", "tablets", 7, 300},
	{"Pioglitazone 15mg", "diabetes", "tablets", 7, 250},
	{"Bandages (10cm)", "first_aid", "rolls", 5, 500},
	{"Gauze Pads", "first_aid", "pieces", 5, 1000},
	{"Antiseptic Solution", "first_aid", "bottles", 7, 200},
	{"Surgical Gloves", "first_aid", "pairs", 5, 800},
	{"Cotton Swabs", "first_aid", "packs", 5, 600},
}

// categoryDemand is the base daily consumption per category, scaled by
// location volume and random variance.
var categoryDemand = map[string]int{
	"painkiller": 50,
	"antibiotic": 30,
	"vitamin":    20,
	"diabetes":   25,
	"first_aid":  40,
}

var volumeMultiplier = map[string]float64{"high": 1.5, "medium": 1.0, "low": 0.5}
var stockMultiplier = map[string]int64{"high": 3, "medium": 2, "low": 1}

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("MEDSTOCK_CONFIG"))
	if err != nil {
		fallback := logger.New("prod")
		fallback.Fatal().Err(err).Msg("config load failed")
	}
	log := logger.New(cfg.App.Env)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.Postgres.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()

	catalog := core.NewCatalog(pool)
	ledger := core.NewLedger(pool)
	rng := rand.New(rand.NewSource(randSeed))

	locations := make([]*core.Location, len(locationSeeds))
	for i, ls := range locationSeeds {
		loc, err := catalog.CreateLocation(ctx, core.CreateLocationInput{
			Name: ls.name, Type: ls.typ, Region: ls.region, Address: ls.address,
		})
		if err != nil {
			log.Fatal().Err(err).Str("location", ls.name).Msg("location seed failed")
		}
		locations[i] = loc
	}
	log.Info().Int("count", len(locations)).Msg("locations seeded")

	items := make([]*core.Item, len(itemSeeds))
	for i, is := range itemSeeds {
		item, err := catalog.CreateItem(ctx, core.CreateItemInput{
			Name: is.name, Category: is.category, Unit: is.unit,
			LeadTimeDays: is.leadTime, MinStock: is.minStock,
		})
		if err != nil {
			log.Fatal().Err(err).Str("item", is.name).Msg("item seed failed")
		}
		items[i] = item
	}
	log.Info().Int("count", len(items)).Msg("items seeded")

	// Per-pair running stock, carried day to day like a real ward register.
	type pair struct{ loc, item int }
	stock := map[pair]int64{}
	for li := range locationSeeds {
		mult := stockMultiplier[locationSeeds[li].volume]
		for ii, is := range itemSeeds {
			initial := float64(is.minStock*mult) * (2 + 2*rng.Float64())
			stock[pair{li, ii}] = int64(initial)
		}
	}

	start := time.Now().AddDate(0, 0, -seedDays)
	total := 0
	for day := 0; day < seedDays; day++ {
		date := start.AddDate(0, 0, day).Format("2006-01-02")

		for li, ls := range locationSeeds {
			batch := core.AddBulkInput{
				LocationID: locations[li].ID,
				Date:       date,
				EnteredBy:  "seed-demo",
			}

			for ii, is := range itemSeeds {
				p := pair{li, ii}
				opening := stock[p]

				demand := float64(categoryDemand[is.category]) * volumeMultiplier[ls.volume] * (0.7 + 0.6*rng.Float64())
				issued := int64(demand)
				if issued > opening {
					issued = opening
				}

				var received int64
				daysOfStock := opening
				if issued > 0 {
					daysOfStock = opening / issued
				}
				if (daysOfStock < int64(ls.reorder) || opening < is.minStock) && rng.Float64() < 0.3 {
					received = int64(demand * (14 + 7*rng.Float64()))
				}

				row := core.BulkItemInput{
					ItemID:   items[ii].ID,
					Received: received,
					Issued:   issued,
				}
				if day == 0 {
					seed := opening
					row.OpeningOverride = &seed
				}
				batch.Items = append(batch.Items, row)
				stock[p] = opening + received - issued
			}

			committed, err := ledger.AddBulk(ctx, batch)
			if err != nil {
				log.Fatal().Err(err).Str("date", date).Int64("location", locations[li].ID).Msg("history seed failed")
			}
			total += len(committed)
		}
	}

	log.Info().Int("transactions", total).Int("days", seedDays).Msg("demo history seeded")
}
