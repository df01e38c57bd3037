package main

import (
	"errors"
	"flag"

	"github.com/gourmet-kitchen/ordersys/internal/config"
	"github.com/gourmet-kitchen/ordersys/internal/csvstore"
	"github.com/gourmet-kitchen/ordersys/internal/logger"
	"github.com/gourmet-kitchen/ordersys/internal/service"
	"github.com/shopspring/decimal"
)

type sampleItem struct {
	name, category, price, description string
}

var sampleMenu = []sampleItem{
	{"Mozzarella Sticks", "appetizers", "9.99", "Crispy breaded mozzarella with marinara sauce"},
	{"Buffalo Wings", "appetizers", "12.99", "Spicy chicken wings with blue cheese dip"},
	{"Onion Rings", "appetizers", "7.99", "Golden fried onion rings with ranch dressing"},
	{"Tomato Basil Soup", "soups", "8.99", "Classic tomato soup with fresh basil"},
	{"Clam Chowder", "soups", "11.99", "New England style clam chowder"},
	{"Caesar Salad", "salads", "12.99", "Romaine with parmesan, croutons and Caesar dressing"},
	{"Grilled Salmon", "mains", "24.99", "Fresh Atlantic salmon with lemon herb butter"},
	{"Ribeye Steak", "mains", "32.99", "12oz prime ribeye with garlic mashed potatoes"},
	{"Chicken Parmesan", "mains", "19.99", "Breaded chicken breast with marinara and mozzarella"},
	{"Fish and Chips", "mains", "16.99", "Beer-battered cod with crispy fries"},
	{"Vegetarian Pasta", "mains", "15.99", "Penne with seasonal vegetables in garlic olive oil"},
	{"French Fries", "sides", "4.99", "Hand-cut fries with sea salt"},
	{"Chocolate Cake", "desserts", "8.99", "Rich chocolate layer cake with vanilla ice cream"},
	{"Cheesecake", "desserts", "7.99", "New York style cheesecake with berry compote"},
	{"Tiramisu", "desserts", "9.99", "Classic Italian dessert with espresso and mascarpone"},
	{"Craft Beer", "beverages", "5.99", "Local craft beer selection"},
	{"Fresh Lemonade", "beverages", "3.99", "Freshly squeezed lemonade"},
	{"Coffee", "beverages", "2.99", "Freshly brewed coffee"},
}

func main() {
	dataDir := flag.String("data-dir", "", "Data directory (defaults to DATA_DIR)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New("info", "text").WithError(err).Fatal("invalid configuration")
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	store, err := csvstore.NewStore(cfg.DataDir, cfg.BackupDir, log)
	if err != nil {
		log.WithError(err).Fatal("failed to open data directory")
	}
	svc := service.New(store, config.NewSettings(cfg), nil, log)
	if _, err := svc.Load(); err != nil {
		log.WithError(err).Fatal("failed to load data")
	}

	created, skipped := 0, 0
	for _, s := range sampleMenu {
		_, err := svc.CreateMenuItem(service.MenuItemInput{
			Name:        s.name,
			Category:    s.category,
			Price:       decimal.RequireFromString(s.price),
			Description: s.description,
		})
		switch {
		case errors.Is(err, service.ErrDuplicateName):
			skipped++
		case err != nil:
			log.WithError(err).WithField("name", s.name).Fatal("failed to create menu item")
		default:
			created++
		}
	}

	if created > 0 {
		if err := svc.Save(); err != nil {
			log.WithError(err).Fatal("failed to save menu")
		}
	}
	log.WithField("data_dir", cfg.DataDir).Infof("Seed complete: %d menu items created, %d already present", created, skipped)
}
