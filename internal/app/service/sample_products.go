package service

import (
	"github.com/mrops-br/karachi-couture/internal/domain"
	"github.com/shopspring/decimal"
)

const sampleImageURL = "https://images.unsplash.com/photo-1593030253490-1540f48f5c3b?q=80&w=1200&auto=format&fit=crop"

type sampleProduct struct {
	title       string
	description string
	category    domain.Category
	price       string
}

// sampleProducts is the curated collection installed by the seed endpoint
var sampleProducts = []sampleProduct{
	{"Clifton Sunset Lawn Suit", "Three-piece printed lawn with a chiffon dupatta in sunset coral.", domain.CategoryWomen, "54.99"},
	{"Saddar Bazaar Chikankari Kurti", "Hand-embroidered cotton kurti inspired by old city balconies.", domain.CategoryWomen, "39.50"},
	{"Sea View Festive Gharara", "Gota-work gharara set for Eid evenings by the sea.", domain.CategoryWomen, "129.00"},
	{"Tariq Road Cotton Kurta", "Breathable everyday kurta with a mandarin collar.", domain.CategoryMen, "32.00"},
	{"Empress Market Waistcoat", "Textured jamawar waistcoat to layer over a kurta.", domain.CategoryMen, "45.75"},
	{"Port Grand Shalwar Kameez", "Crisp wash-and-wear shalwar kameez in harbour grey.", domain.CategoryMen, "48.00"},
	{"Frere Hall Eid Frock", "Twirl-ready embroidered frock for little ones.", domain.CategoryKids, "27.50"},
	{"Boat Basin Kids Kurta Set", "Soft cotton kurta pajama in sea-glass blue.", domain.CategoryKids, "22.00"},
}

func buildSampleCatalog() ([]*domain.Product, error) {
	products := make([]*domain.Product, 0, len(sampleProducts))
	for _, s := range sampleProducts {
		price, err := decimal.NewFromString(s.price)
		if err != nil {
			return nil, err
		}
		p, err := domain.NewProduct(s.title, s.description, s.category, price, sampleImageURL)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, nil
}
