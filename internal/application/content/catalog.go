package content

import "github.com/turtacn/CaratCompare/internal/domain/diamond"

// ShapeInfo is the editorial copy for a shape hub page.
type ShapeInfo struct {
	Description     string
	Characteristics []string
}

var shapeInfo = map[diamond.Shape]ShapeInfo{
	diamond.Round: {
		Description: "The round brilliant is the most popular diamond shape, representing about 75% of all diamonds sold. Its 58 facets maximize brilliance and fire.",
		Characteristics: []string{
			"Maximum brilliance and sparkle",
			"Classic and timeless appearance",
			"Works with any ring setting",
			"Best light performance",
		},
	},
	diamond.Oval: {
		Description: "Oval diamonds offer a unique look with brilliant sparkle similar to round diamonds, but with an elongated shape that can make fingers appear longer and more slender.",
		Characteristics: []string{
			"Elongates the appearance of fingers",
			"Brilliant sparkle like round diamonds",
			"Larger surface area per carat",
			"Modern and elegant style",
		},
	},
	diamond.Princess: {
		Description: "Princess cut diamonds are the most popular fancy shape. Known for their sharp, uncut corners and brilliant facet pattern.",
		Characteristics: []string{
			"Modern square or rectangular shape",
			"Exceptional brilliance",
			"Works well in contemporary settings",
			"Good value per carat",
		},
	},
	diamond.Cushion: {
		Description: "Cushion cut diamonds blend a square cut with rounded corners, resembling a pillow. This romantic cut has been popular for over a century.",
		Characteristics: []string{
			"Soft, romantic appearance",
			"Excellent fire and brilliance",
			"Vintage-inspired look",
			"Works well with halo settings",
		},
	},
	diamond.Emerald: {
		Description: "Emerald cut diamonds feature a rectangular shape with step-cut facets, creating a hall-of-mirrors effect with distinctive flashes of light.",
		Characteristics: []string{
			"Elegant, sophisticated look",
			"Hall-of-mirrors effect",
			"Shows clarity well",
			"Art deco and vintage appeal",
		},
	},
	diamond.Asscher: {
		Description: "Asscher cut diamonds are similar to emerald cuts but in a square shape, featuring step-cut facets and a distinctive X pattern when viewed from above.",
		Characteristics: []string{
			"Vintage art deco style",
			"Unique X-pattern",
			"Exceptional clarity display",
			"Square shape with cut corners",
		},
	},
	diamond.Radiant: {
		Description: "Radiant cut diamonds combine the elegant shape of emerald cuts with the brilliant sparkle of round diamonds, featuring trimmed corners.",
		Characteristics: []string{
			"Brilliant sparkle in rectangular shape",
			"Versatile and vibrant",
			"Trimmed corners for durability",
			"Works well in various settings",
		},
	},
	diamond.Pear: {
		Description: "Pear shaped diamonds, also called teardrop diamonds, combine the best of round and marquise cuts into a unique, elegant shape.",
		Characteristics: []string{
			"Unique teardrop silhouette",
			"Elongates fingers",
			"Versatile orientation",
			"Distinctive and elegant",
		},
	},
	diamond.Marquise: {
		Description: "Marquise cut diamonds are elongated with pointed ends, maximizing carat weight and creating a dramatic, eye-catching appearance.",
		Characteristics: []string{
			"Maximum surface area per carat",
			"Dramatic elongated shape",
			"Vintage royal heritage",
			"Makes fingers appear longer",
		},
	},
	diamond.Heart: {
		Description: "Heart shaped diamonds are the ultimate symbol of love and romance, featuring a distinctive heart silhouette with brilliant sparkle.",
		Characteristics: []string{
			"Ultimate symbol of romance",
			"Unique and memorable",
			"Brilliant sparkle",
			"Best in larger carat weights",
		},
	},
}

// InfoFor returns the editorial copy for s, or a zero ShapeInfo.
func InfoFor(s diamond.Shape) ShapeInfo {
	return shapeInfo[s]
}

// FAQ is a question and answer pair shown on comparison and home pages.
type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

var faqs = []FAQ{
	{
		Question: "Does diamond size matter?",
		Answer:   `When buying a diamond, carat weight is often the biggest driver of price. However, physical dimensions (millimeters) don't always scale linearly with weight. For example, a 2.0ct diamond is twice as heavy as a 1.0ct, but only about 25% wider visually. Use the comparison tool above to visualize exactly how much "face-up" surface area you gain by moving up in carat weight.`,
	},
	{
		Question: "What's the difference between carat weight and size?",
		Answer:   "Carat (ct) measures weight, not size. One carat equals 200 milligrams. Two diamonds with the same carat weight can look different sizes depending on their cut proportions and shape. A well-cut diamond maximizes face-up appearance, while a poorly cut diamond may hide weight in the depth, appearing smaller. This is why comparing millimeter dimensions is more reliable than carat alone.",
	},
	{
		Question: "Which diamond shape looks biggest?",
		Answer:   "Elongated shapes like Oval, Pear, and Marquise typically appear larger than Round diamonds of the same carat weight because they have more surface area spread across their length and width. For example, a 1.0ct Oval might measure 7.7 x 5.7mm, while a 1.0ct Round is 6.5mm in diameter. The Oval visually covers more finger space despite weighing the same.",
	},
	{
		Question: "How much should I spend on an engagement ring?",
		Answer:   `Forget the "3 months salary" myth. Spend what feels comfortable for your budget and lifestyle. The average engagement ring in the US costs $5,000-$6,000, but there's no "right" amount. Consider what matters most to you: size, quality, or brand. Many couples prioritize a larger, eye-clean diamond over perfect clarity grades that require magnification to see.`,
	},
	{
		Question: "What is the most popular diamond size for engagement rings?",
		Answer:   `The most popular carat weight for engagement rings is 1.0 carat, followed by 0.75ct and 1.5ct. Round diamonds remain the most chosen shape (about 50% of purchases), followed by Oval, Princess, and Cushion cuts. However, "popular" doesn't mean it's right for everyone. Choose based on your partner's style, hand size, and your budget.`,
	},
	{
		Question: "Do lab-grown diamonds look different from natural diamonds?",
		Answer:   "No. Lab-grown diamonds are chemically, physically, and optically identical to natural diamonds. Even professional gemologists need specialized equipment to tell them apart. The only real differences are origin (one formed in Earth's mantle over billions of years, the other in a lab in weeks) and price (lab-grown cost 40-60% less). Both are real diamonds with the same brilliance, hardness, and beauty.",
	},
}

// FAQs returns the site FAQ in display order.
func FAQs() []FAQ {
	out := make([]FAQ, len(faqs))
	copy(out, faqs)
	return out
}
