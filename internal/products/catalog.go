package products

import "github.com/kioskworks/counter-backend/pkg/db/models"

func limit(n int64) *int64 {
	return &n
}

// defaultCatalog is the menu seeded into an empty products table.
func defaultCatalog() []models.Product {
	return []models.Product{
		// Coffee
		{ProductID: 1, Name: "ブレンドコーヒー", Filename: "coffee01_blend.png", Price: 150, NoStock: limit(100)},
		{ProductID: 2, Name: "アメリカンコーヒー", Filename: "coffee02_american.png", Price: 150, NoStock: limit(100)},
		{ProductID: 3, Name: "カフェオレコーヒー", Filename: "coffee03_cafeole.png", Price: 150, NoStock: limit(100)},
		{ProductID: 4, Name: "ブレンドブラックコーヒー", Filename: "coffee04_blend_black.png", Price: 150, NoStock: limit(100)},
		{ProductID: 5, Name: "カプチーノコーヒー", Filename: "coffee05_cappuccino.png", Price: 150, NoStock: limit(100)},
		{ProductID: 6, Name: "カフェラテコーヒー", Filename: "coffee06_cafelatte.png", Price: 150, NoStock: limit(100)},
		{ProductID: 7, Name: "マキアートコーヒー", Filename: "coffee07_cafe_macchiato.png", Price: 150, NoStock: limit(100)},
		{ProductID: 8, Name: "モカコーヒー", Filename: "coffee08_cafe_mocha.png", Price: 150, NoStock: limit(100)},
		{ProductID: 9, Name: "カラメルコーヒー", Filename: "coffee09_caramel_macchiato.png", Price: 150, NoStock: limit(100)},
		{ProductID: 10, Name: "アイスコーヒー", Filename: "coffee10_iced_coffee.png", Price: 150, NoStock: limit(100)},
		{ProductID: 11, Name: "アイスミルクコーヒー", Filename: "coffee11_iced_milk_coffee.png", Price: 150, NoStock: limit(100)},
		{ProductID: 12, Name: "エスプレッソコーヒー", Filename: "coffee12_espresso.png", Price: 150, NoStock: limit(100)},
		// Tea
		{ProductID: 13, Name: "レモンティー", Filename: "tea_lemon.png", Price: 100, NoStock: limit(100)},
		{ProductID: 14, Name: "ミルクティー", Filename: "tea_milk.png", Price: 100, NoStock: limit(100)},
		{ProductID: 15, Name: "ストレイトティー", Filename: "tea_straight.png", Price: 100, NoStock: limit(100)},
		// Others
		{ProductID: 16, Name: "シュガー", Filename: "cooking_sugar_stick.png", Price: 0},
		{ProductID: 17, Name: "ミルクシロップ", Filename: "sweets_milk_cream.png", Price: 0},
	}
}
