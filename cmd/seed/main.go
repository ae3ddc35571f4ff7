package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/devtrace/devtrace/internal/auth"
	"github.com/devtrace/devtrace/internal/db"
	"github.com/devtrace/devtrace/internal/models"
)

type seedProject struct {
	name    string
	siteURL string
	// weight controls relative traffic volume (higher = more visits)
	weight float64
}

var projects = []seedProject{
	{"Marketing Site", "https://www.example.com", 5.0},
	{"Documentation", "https://docs.example.com", 3.5},
	{"Blog", "https://blog.example.com", 2.5},
	{"Status Page", "https://status.example.com", 1.0},
}

var paths = []struct {
	path   string
	weight float64
}{
	{"/", 30},
	{"/pricing", 12},
	{"/features", 10},
	{"/docs/getting-started", 9},
	{"/blog/launch", 8},
	{"/about", 6},
	{"/contact", 5},
	{"/docs/api", 5},
	{"/changelog", 3},
	{"/careers", 2},
}

var referrers = []struct {
	url    string
	weight float64
}{
	{"https://google.com/", 30},
	{"", 25}, // direct traffic
	{"https://github.com/", 12},
	{"https://twitter.com/", 8},
	{"https://reddit.com/", 7},
	{"https://news.ycombinator.com/", 6},
	{"https://dev.to/", 4},
	{"https://linkedin.com/", 4},
	{"https://producthunt.com/", 2},
}

var countries = []struct {
	country string
	weight  float64
}{
	{"United States", 25},
	{"India", 18},
	{"Germany", 9},
	{"United Kingdom", 8},
	{"Brazil", 6},
	{"France", 5},
	{"Canada", 5},
	{"Australia", 4},
	{"Japan", 3},
	{"Netherlands", 3},
	{"Singapore", 2},
	{"Spain", 2},
	{"Unknown", 2},
}

var browsers = []struct {
	name   string
	weight float64
}{
	{"Chrome", 55},
	{"Firefox", 15},
	{"Safari", 14},
	{"Edge", 9},
	{"Opera", 3},
	{"Unknown", 4},
}

var oses = []struct {
	name   string
	weight float64
}{
	{"Windows", 35},
	{"macOS", 25},
	{"Linux", 14},
	{"Android", 16},
	{"iOS", 10},
}

var devices = []struct {
	name   string
	weight float64
}{
	{"desktop", 62},
	{"mobile", 31},
	{"tablet", 5},
	{"bot", 2},
}

func main() {
	dbPath := os.Getenv("DEVTRACE_DB_PATH")
	if dbPath == "" {
		dbPath = "./devtrace.db"
	}

	database, err := db.Open(dbPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer database.Close()

	rng := rand.New(rand.NewSource(42)) // deterministic seed
	owner := "demo-user"
	now := time.Now().UTC()
	threeMonthsAgo := now.AddDate(0, -3, 0)

	pickPath := func() string {
		var total float64
		for _, p := range paths {
			total += p.weight
		}
		v := rng.Float64() * total
		for _, p := range paths {
			v -= p.weight
			if v <= 0 {
				return p.path
			}
		}
		return paths[0].path
	}

	pickReferrer := func() string {
		var total float64
		for _, r := range referrers {
			total += r.weight
		}
		v := rng.Float64() * total
		for _, r := range referrers {
			v -= r.weight
			if v <= 0 {
				return r.url
			}
		}
		return referrers[0].url
	}

	pickCountry := func() string {
		var total float64
		for _, c := range countries {
			total += c.weight
		}
		v := rng.Float64() * total
		for _, c := range countries {
			v -= c.weight
			if v <= 0 {
				return c.country
			}
		}
		return countries[0].country
	}

	pickBrowser := func() string {
		var total float64
		for _, b := range browsers {
			total += b.weight
		}
		v := rng.Float64() * total
		for _, b := range browsers {
			v -= b.weight
			if v <= 0 {
				return b.name
			}
		}
		return browsers[0].name
	}

	pickOS := func() string {
		var total float64
		for _, o := range oses {
			total += o.weight
		}
		v := rng.Float64() * total
		for _, o := range oses {
			v -= o.weight
			if v <= 0 {
				return o.name
			}
		}
		return oses[0].name
	}

	pickDevice := func() string {
		var total float64
		for _, d := range devices {
			total += d.weight
		}
		v := rng.Float64() * total
		for _, d := range devices {
			v -= d.weight
			if v <= 0 {
				return d.name
			}
		}
		return devices[0].name
	}

	fmt.Println("Seeding projects...")

	created := make([]models.Project, 0, len(projects))
	for i, sp := range projects {
		apiKey, err := models.GenerateAPIKey()
		if err != nil {
			log.Fatalf("generate key: %v", err)
		}

		project := models.Project{
			Owner:   owner,
			Name:    sp.name,
			SiteURL: sp.siteURL,
			APIKey:  apiKey,
		}
		if err := models.CreateProject(database, &project); err != nil {
			log.Fatalf("create project %q: %v", sp.name, err)
		}

		// Spread creation dates over the first week
		createdAt := threeMonthsAgo.Add(time.Duration(i) * 36 * time.Hour)
		if _, err := database.Exec(`UPDATE projects SET created_at = ? WHERE id = ?`, createdAt, project.ID); err != nil {
			log.Fatalf("backdate project %q: %v", sp.name, err)
		}
		project.CreatedAt = createdAt

		created = append(created, project)
		fmt.Printf("  [%2d] %-16s key=%s\n", project.ID, sp.name, apiKey)
	}

	fmt.Println("\nGenerating visits...")

	totalVisits := 0
	for i, sp := range projects {
		project := created[i]

		// Base visits per day scaled by weight
		baseVisitsPerDay := sp.weight * 10

		day := project.CreatedAt
		for day.Before(now) {
			dayVariance := 0.6 + rng.Float64()*0.8

			// Weekend dip
			weekdayFactor := 1.0
			if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
				weekdayFactor = 0.4
			}

			visitsThisDay := int(baseVisitsPerDay * dayVariance * weekdayFactor)

			for j := 0; j < visitsThisDay; j++ {
				hour := rng.NormFloat64()*4 + 14 // center around 2pm UTC
				if hour < 0 {
					hour = 0
				}
				if hour >= 24 {
					hour = 23
				}
				visitTime := time.Date(day.Year(), day.Month(), day.Day(),
					int(hour), rng.Intn(60), rng.Intn(60), 0, time.UTC)
				if visitTime.After(now) {
					continue
				}

				browser := pickBrowser()
				osName := pickOS()
				visit := models.Visit{
					ProjectID: project.ID,
					IP:        fmt.Sprintf("%d.%d.%d.%d", rng.Intn(224)+1, rng.Intn(256), rng.Intn(256), rng.Intn(256)),
					Country:   pickCountry(),
					Region:    "Unknown",
					City:      "Unknown",
					UserAgent: fmt.Sprintf("Mozilla/5.0 (%s) %s", osName, browser),
					Browser:   browser,
					OS:        osName,
					Device:    pickDevice(),
					Path:      pickPath(),
					Referrer:  pickReferrer(),
					CreatedAt: visitTime,
				}
				if err := models.InsertVisit(database, &visit); err != nil {
					log.Fatalf("insert visit for %s: %v", sp.name, err)
				}
				totalVisits++
			}

			day = day.Add(24 * time.Hour)
		}

		fmt.Printf("  %-16s seeded\n", sp.name)
	}

	fmt.Printf("\nDone! Created %d projects with %d total visits.\n", len(created), totalVisits)
	fmt.Printf("Database: %s\n", dbPath)

	// A signed dashboard token makes the seeded data reachable right away.
	if secret := os.Getenv("DEVTRACE_JWT_SECRET"); secret != "" {
		token, err := auth.NewVerifier(secret).Sign(owner, 24*time.Hour)
		if err != nil {
			log.Fatalf("sign token: %v", err)
		}
		fmt.Printf("Dashboard token for %q (24h):\n%s\n", owner, token)
	}
}
