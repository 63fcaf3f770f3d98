// Package reference provides the curated ingredient reference lists: a built-in
// Swedish and English dataset, and a YAML loader for replacing it.
package reference

import "github.com/veganscan/backend/internal/domain"

// Default returns the built-in reference lists. Each call returns fresh slices.
func Default() domain.ReferenceLists {
	return domain.ReferenceLists{
		DefinitelyNonVegan:  clone(definitelyNonVegan),
		PotentiallyNonVegan: clone(potentiallyNonVegan),
		SafeExceptions:      clone(safeExceptions),
		AnimalIndicators:    clone(animalIndicators),
		SafePrefixes:        clone(safePrefixes),
		ShortValid:          clone(shortValid),
	}
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// definitelyNonVegan are ingredients that are always animal-derived
var definitelyNonVegan = []string{
	// dairy
	"mjölk", "mjölkpulver", "skummjölkspulver", "helmjölkspulver", "grädde", "smör",
	"ost", "vassle", "vasslepulver", "kasein", "kaseinat", "laktos", "yoghurt",
	"kvarg", "filmjölk", "milk", "butter", "cheese", "cream", "whey", "casein",
	"caseinate", "lactose", "yogurt", "ghee",
	// eggs
	"ägg", "äggula", "äggvita", "äggpulver", "egg", "albumin",
	// bee and insect products
	"honung", "bivax", "karmin", "schellack", "honey", "beeswax", "carmine",
	"cochineal", "shellac",
	// meat, fish and rendered fats
	"kött", "fläsk", "kyckling", "fisk", "ansjovis", "räkor", "gelatin", "gelatine",
	"kollagen", "ister", "talg", "isinglass", "lanolin", "beef", "pork", "chicken",
	"anchovy", "collagen", "tallow",
	// additives of animal origin
	"E120", "E441", "E542", "E901", "E904", "E913", "E966",
}

// potentiallyNonVegan are ingredients that may come from plant or animal sources
var potentiallyNonVegan = []string{
	"lecitin", "lecithin", "E322",
	"mono- och diglycerider av fettsyror", "mono- and diglycerides",
	"E470", "E471", "E472", "E473", "E474", "E475", "E477", "E481", "E482",
	"glycerol", "glycerin", "E422",
	"stearinsyra", "stearic acid", "E570", "magnesiumstearat",
	"vitamin D3", "D3-vitamin", "omega-3",
	"naturlig arom", "natural flavouring", "natural flavor",
	"L-cystein", "E920", "E631", "E627", "E635",
}

// safeExceptions are known plant-derived ingredients, including compounds whose
// names embed a non-vegan entry
var safeExceptions = []string{
	// plant-based compounds of non-vegan names
	"havremjölk", "kokosmjölk", "sojamjölk", "mandelmjölk", "rismjölk",
	"sojalecitin", "solroslecitin", "rapslecitin",
	"kakaosmör", "sheasmör", "jordnötssmör", "mjöl",
	"oat milk", "coconut milk", "soy milk", "almond milk", "rice milk",
	"soy lecithin", "sunflower lecithin",
	"cocoa butter", "shea butter", "peanut butter",
	"cream of tartar", "eggplant", "butternut", "butternut squash",
	// common safe ingredients
	"socker", "salt", "vatten", "vetemjöl", "rågmjöl", "havregryn", "jäst",
	"rapsolja", "solrosolja", "olivolja", "palmolja", "kokosolja",
	"stärkelse", "majsstärkelse", "potatisstärkelse", "kakao", "kakaopulver",
	"druvsocker", "glukossirap", "citronsyra", "askorbinsyra", "vinäger",
	"sojaprotein", "ärtprotein", "tofu", "lök", "vitlök", "tomat", "potatis",
	"sugar", "water", "wheat flour", "rapeseed oil", "sunflower oil", "olive oil",
	"yeast", "starch", "citric acid", "vinegar", "cocoa",
}

// animalIndicators are substrings that suggest animal origin without proving it
var animalIndicators = []string{
	"kött", "fisk", "djur", "animal", "meat", "fish", "bovine", "porcine",
}

// safePrefixes mark plant-based variants of non-vegan names ("havremjölk", "soy milk")
var safePrefixes = []string{
	"havre", "kokos", "soja", "mandel", "ris", "växt", "veg",
	"oat", "soy", "almond", "coconut", "rice", "plant", "peanut",
}

// shortValid are legitimate ingredients short enough to look like OCR fragments
var shortValid = []string{
	"te", "öl", "vin", "ris", "soja", "råg", "kli", "ärt", "dill", "anis", "chia",
	"oat", "rye", "tea", "soy", "pea", "nut", "oil", "fig", "yam", "kiwi", "lime",
	"kale", "leek",
}
