package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/harentsoaR/diagnosia-api/internal/config"
	"github.com/harentsoaR/diagnosia-api/internal/models"
	"github.com/harentsoaR/diagnosia-api/internal/store"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
)

type seedOptions struct {
	tests      int
	banners    int
	adminEmail string
	seed       uint64
	skipRef    bool
}

func newSeedCommand() *cobra.Command {
	opts := &seedOptions{}
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with sample data",
		Long: `Insert sample lab tests, banners, marketing content and the
division/district reference data into the configured MongoDB database.

--admin-email creates (or promotes) the first administrator; the API
itself never grants the admin role to a self-registered account.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), opts)
		},
	}
	cmd.Flags().IntVar(&opts.tests, "tests", 20, "number of lab tests to create")
	cmd.Flags().IntVar(&opts.banners, "banners", 3, "number of banners to create")
	cmd.Flags().StringVar(&opts.adminEmail, "admin-email", "", "email of the account to make administrator")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().BoolVar(&opts.skipRef, "skip-reference", false, "do not load divisions and districts")
	return cmd
}

func runSeed(ctx context.Context, opts *seedOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	logger := config.NewLogger(cfg.Logging)
	ctx = logger.WithContext(ctx)

	client, err := store.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.ConnectTimeout)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	db := client.Database(cfg.Mongo.Database)
	if err := store.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	var loadRef referenceLoader
	if !opts.skipRef {
		loadRef = mongoReferenceLoader(db)
	}
	return seedStore(ctx, store.NewMongoStore(db), loadRef, gofakeit.New(opts.seed), opts)
}

// referenceLoader writes the location reference data.
type referenceLoader func(ctx context.Context, divs []models.Division, dists []models.District, upas []models.Upazila) error

func mongoReferenceLoader(db *mongo.Database) referenceLoader {
	return func(ctx context.Context, divs []models.Division, dists []models.District, upas []models.Upazila) error {
		batches := map[string][]interface{}{
			store.DivisionsCollection: toDocs(divs),
			store.DistrictsCollection: toDocs(dists),
			store.UpazilasCollection:  toDocs(upas),
		}
		for name, docs := range batches {
			if len(docs) == 0 {
				continue
			}
			coll := db.Collection(name)
			if _, err := coll.DeleteMany(ctx, map[string]interface{}{}); err != nil {
				return fmt.Errorf("clear %s: %w", name, err)
			}
			if _, err := coll.InsertMany(ctx, docs); err != nil {
				return fmt.Errorf("insert %s: %w", name, err)
			}
		}
		return nil
	}
}

func toDocs[T any](items []T) []interface{} {
	out := make([]interface{}, len(items))
	for i := range items {
		out[i] = items[i]
	}
	return out
}

func seedStore(ctx context.Context, st *store.Store, loadRef referenceLoader, f *gofakeit.Faker, opts *seedOptions) error {
	logger := zerolog.Ctx(ctx)

	if loadRef != nil {
		divs, dists, upas := referenceData()
		if err := loadRef(ctx, divs, dists, upas); err != nil {
			return err
		}
		logger.Info().Int("divisions", len(divs)).Int("districts", len(dists)).Int("upazilas", len(upas)).Msg("seeded reference data")
	}

	for _, t := range fakeTests(f, opts.tests, time.Now()) {
		doc, err := models.ToDocument(t)
		if err != nil {
			return fmt.Errorf("seed tests: %w", err)
		}
		if _, err := st.Tests.Create(ctx, doc); err != nil {
			return fmt.Errorf("seed tests: %w", err)
		}
	}
	logger.Info().Int("count", opts.tests).Msg("seeded tests")

	for i, b := range fakeBanners(f, opts.banners) {
		b.IsActive = i == 0
		doc, err := models.ToDocument(b)
		if err != nil {
			return fmt.Errorf("seed banners: %w", err)
		}
		if _, err := st.Banners.Create(ctx, doc); err != nil {
			return fmt.Errorf("seed banners: %w", err)
		}
	}
	logger.Info().Int("count", opts.banners).Msg("seeded banners")

	for kind, docs := range fakeContent(f) {
		if err := st.Content.Insert(ctx, kind, docs...); err != nil {
			return fmt.Errorf("seed %s: %w", kind, err)
		}
	}

	if opts.adminEmail != "" {
		if err := ensureAdmin(ctx, st.Users, opts.adminEmail); err != nil {
			return err
		}
		logger.Info().Str("email", opts.adminEmail).Msg("administrator ready")
	}
	logger.Info().Msg("seed complete")
	return nil
}

// ensureAdmin creates the account if needed and grants it the admin role.
func ensureAdmin(ctx context.Context, users store.UserStore, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return errors.New("admin email is empty")
	}
	if _, _, err := users.CreateIfAbsent(ctx, models.Document{"name": "Administrator", "email": email, "status": models.StatusActive}); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	u, err := users.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if u == nil {
		return fmt.Errorf("admin %s not found after insert", email)
	}
	if _, err := users.SetRole(ctx, u.ID.Hex(), models.RoleAdmin); err != nil {
		return fmt.Errorf("promote admin: %w", err)
	}
	return nil
}

var labTests = []string{
	"CBC", "Lipid Profile", "HbA1c", "Thyroid Panel", "Liver Function Test",
	"Kidney Function Test", "Vitamin D", "Urine Routine", "Chest X-Ray", "ECG",
	"Blood Glucose (Fasting)", "Dengue NS1", "Serum Creatinine", "CRP", "Ultrasound Abdomen",
}

// fakeTests builds n tests dated within the next 30 days of now.
func fakeTests(f *gofakeit.Faker, n int, now time.Time) []models.Test {
	out := make([]models.Test, 0, n)
	for i := 0; i < n; i++ {
		name := labTests[i%len(labTests)]
		if i >= len(labTests) {
			name = fmt.Sprintf("%s %d", name, i/len(labTests)+1)
		}
		slots := f.Number(5, 40)
		booked := f.Number(0, slots)
		out = append(out, models.Test{
			TestName:       name,
			ShortDetails:   f.Sentence(8),
			Details:        f.Sentence(30),
			Slots:          slots,
			SlotsAvailable: slots - booked,
			Booked:         booked,
			Price:          float64(f.Number(3, 60) * 50),
			Date:           now.AddDate(0, 0, f.Number(0, 30)).Format("2006-01-02"),
			ImageURL:       fmt.Sprintf("https://picsum.photos/seed/%s/640/480", f.LetterN(8)),
		})
	}
	return out
}

func fakeBanners(f *gofakeit.Faker, n int) []models.Banner {
	out := make([]models.Banner, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Banner{
			Name:         f.Company(),
			Title:        f.Sentence(4),
			Description:  f.Sentence(16),
			ImageURL:     fmt.Sprintf("https://picsum.photos/seed/%s/1200/400", f.LetterN(8)),
			CouponCode:   strings.ToUpper(f.LetterN(6)),
			DiscountRate: float64(f.Number(1, 6) * 5),
		})
	}
	return out
}

func fakeContent(f *gofakeit.Faker) map[models.ContentKind][]models.Document {
	content := make(map[models.ContentKind][]models.Document)
	for i := 0; i < 3; i++ {
		content[models.ContentPromotions] = append(content[models.ContentPromotions], models.Document{
			"title": f.Sentence(4), "description": f.Sentence(12), "discount": f.Number(5, 30),
		})
		content[models.ContentTestimonials] = append(content[models.ContentTestimonials], models.Document{
			"name": f.Name(), "review": f.Sentence(20), "rating": f.Number(3, 5),
		})
		content[models.ContentTips] = append(content[models.ContentTips], models.Document{
			"title": f.Sentence(5), "tip": f.Sentence(18),
		})
		content[models.ContentBlogs] = append(content[models.ContentBlogs], models.Document{
			"title": f.Sentence(6), "author": f.Name(), "body": f.Sentence(60),
		})
	}
	content[models.ContentAbout] = []models.Document{{
		"title": "About NexGen Diagnosia", "description": f.Sentence(40),
	}}
	content[models.ContentFooter] = []models.Document{{
		"email": "support@nexgen-diagnosia.com", "phone": f.Phone(), "address": f.Street() + ", Dhaka",
	}}
	return content
}

func referenceData() ([]models.Division, []models.District, []models.Upazila) {
	divisions := []models.Division{
		{ID: "1", Name: "Chattagram", BnName: "চট্টগ্রাম", URL: "www.chittagongdiv.gov.bd"},
		{ID: "2", Name: "Rajshahi", BnName: "রাজশাহী", URL: "www.rajshahidiv.gov.bd"},
		{ID: "3", Name: "Khulna", BnName: "খুলনা", URL: "www.khulnadiv.gov.bd"},
		{ID: "4", Name: "Barisal", BnName: "বরিশাল", URL: "www.barisaldiv.gov.bd"},
		{ID: "5", Name: "Sylhet", BnName: "সিলেট", URL: "www.sylhetdiv.gov.bd"},
		{ID: "6", Name: "Dhaka", BnName: "ঢাকা", URL: "www.dhakadiv.gov.bd"},
		{ID: "7", Name: "Rangpur", BnName: "রংপুর", URL: "www.rangpurdiv.gov.bd"},
		{ID: "8", Name: "Mymensingh", BnName: "ময়মনসিংহ", URL: "www.mymensinghdiv.gov.bd"},
	}
	districts := []models.District{
		{ID: "1", DivisionID: "1", Name: "Comilla", BnName: "কুমিল্লা", URL: "www.comilla.gov.bd"},
		{ID: "8", DivisionID: "1", Name: "Chattogram", BnName: "চট্টগ্রাম", URL: "www.chittagong.gov.bd"},
		{ID: "15", DivisionID: "2", Name: "Rajshahi", BnName: "রাজশাহী", URL: "www.rajshahi.gov.bd"},
		{ID: "27", DivisionID: "3", Name: "Khulna", BnName: "খুলনা", URL: "www.khulna.gov.bd"},
		{ID: "37", DivisionID: "4", Name: "Barisal", BnName: "বরিশাল", URL: "www.barisal.gov.bd"},
		{ID: "36", DivisionID: "5", Name: "Sylhet", BnName: "সিলেট", URL: "www.sylhet.gov.bd"},
		{ID: "47", DivisionID: "6", Name: "Dhaka", BnName: "ঢাকা", URL: "www.dhaka.gov.bd"},
		{ID: "41", DivisionID: "6", Name: "Gazipur", BnName: "গাজীপুর", URL: "www.gazipur.gov.bd"},
		{ID: "55", DivisionID: "7", Name: "Rangpur", BnName: "রংপুর", URL: "www.rangpur.gov.bd"},
		{ID: "61", DivisionID: "8", Name: "Mymensingh", BnName: "ময়মনসিংহ", URL: "www.mymensingh.gov.bd"},
	}
	upazilas := []models.Upazila{
		{ID: "493", DistrictID: "47", Name: "Savar", BnName: "সাভার", URL: "savar.dhaka.gov.bd"},
		{ID: "494", DistrictID: "47", Name: "Dhamrai", BnName: "ধামরাই", URL: "dhamrai.dhaka.gov.bd"},
		{ID: "460", DistrictID: "41", Name: "Kaliakair", BnName: "কালিয়াকৈর", URL: "kaliakair.gazipur.gov.bd"},
		{ID: "1", DistrictID: "1", Name: "Debidwar", BnName: "দেবিদ্বার", URL: "debidwar.comilla.gov.bd"},
	}
	return divisions, districts, upazilas
}
