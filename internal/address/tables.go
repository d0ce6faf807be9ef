package address

import "strings"

// table is a compiled token set plus a list of multi-word phrases, both in
// folded (lowercase, accent-stripped, punctuation-collapsed) form.
type table struct {
	words   map[string]struct{}
	phrases []string
}

func newTable(entries ...string) *table {
	t := &table{words: make(map[string]struct{}, len(entries))}
	for _, e := range entries {
		e = collapse(fold(e))
		if e == "" {
			continue
		}
		if strings.ContainsRune(e, ' ') {
			t.phrases = append(t.phrases, e)
		} else {
			t.words[e] = struct{}{}
		}
	}
	return t
}

// match reports whether any entry occurs in the address, whole-word.
func (t *table) match(padded string, tokens []string) bool {
	for _, tok := range tokens {
		if _, ok := t.words[tok]; ok {
			return true
		}
	}
	for _, p := range t.phrases {
		if containsPhrase(padded, p) {
			return true
		}
	}
	return false
}

// count returns the number of distinct entries occurring in the address.
func (t *table) count(padded string, tokens []string) int {
	n := 0
	seen := make(map[string]struct{})
	for _, tok := range tokens {
		if _, ok := t.words[tok]; ok {
			if _, dup := seen[tok]; !dup {
				seen[tok] = struct{}{}
				n++
			}
		}
	}
	for _, p := range t.phrases {
		if containsPhrase(padded, p) {
			n++
		}
	}
	return n
}

// anySubstring reports whether any entry occurs in s as a plain substring.
// Used for the context scan around ambiguous postal codes, where word
// boundaries are unreliable.
func (t *table) anySubstring(s string) bool {
	for w := range t.words {
		if strings.Contains(s, w) {
			return true
		}
	}
	for _, p := range t.phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// frenchIdioms vetoes the foreign-name rule for French streets and landmarks
// whose names contain a foreign country or city. Checked before the country
// list; most entries are real Paris and Nice odonyms.
var frenchIdioms = newTable(
	"promenade des anglais",
	"rue des anglais",
	"chemin des anglais",
	"rue d'angleterre",
	"quai d'angleterre",
	"place d'italie",
	"avenue d'italie",
	"rue d'italie",
	"porte d'italie",
	"boulevard d'algerie",
	"rue d'alger",
	"rue de suede",
	"avenue de suede",
	"rue de russie",
	"rue d'armenie",
	"rue du luxembourg",
	"jardin du luxembourg",
	"rue de constantinople",
	"rue de naples",
	"rue de rome",
	"avenue de rome",
	"rue de londres",
	"rue de madrid",
	"rue d'amsterdam",
	"rue de lisbonne",
	"rue de moscou",
	"rue d'athenes",
	"rue de turin",
	"rue de milan",
	"rue de vienne",
	"cours du danemark",
)

// foreignCountries lists country names in their French and English forms.
// "maurice" is deliberately absent (common French given name); the island
// is covered by "mauritius" and "ile maurice".
var foreignCountries = newTable(
	"afghanistan", "albanie", "albania", "algerie", "algeria",
	"allemagne", "germany", "andorre", "andorra", "angola",
	"argentine", "argentina", "armenie", "armenia", "australie", "australia",
	"autriche", "austria", "azerbaidjan", "azerbaijan",
	"bahamas", "bahrein", "bahrain", "bangladesh", "barbade", "barbados",
	"belgique", "belgium", "belize", "benin", "bhoutan", "bhutan",
	"bielorussie", "belarus", "bolivie", "bolivia", "bosnie", "bosnia",
	"botswana", "bresil", "brazil", "brunei", "bulgarie", "bulgaria",
	"burkina faso", "burundi",
	"cambodge", "cambodia", "cameroun", "cameroon", "canada",
	"chili", "chile", "chine", "china", "chypre", "cyprus",
	"colombie", "colombia", "comores", "comoros", "congo",
	"costa rica", "cote d'ivoire", "ivory coast", "croatie", "croatia", "cuba",
	"danemark", "denmark", "djibouti", "republique dominicaine", "dominican republic",
	"egypte", "egypt", "equateur", "ecuador", "erythree", "eritrea",
	"espagne", "spain", "estonie", "estonia", "eswatini",
	"etats unis", "united states", "usa", "ethiopie", "ethiopia",
	"fidji", "fiji", "finlande", "finland",
	"gabon", "gambie", "gambia", "georgie", "georgia", "ghana",
	"grece", "greece", "grenade", "grenada", "guatemala",
	"guinee", "guinea", "guyana",
	"haiti", "honduras", "hongrie", "hungary",
	"inde", "india", "indonesie", "indonesia", "irak", "iraq", "iran",
	"irlande", "ireland", "islande", "iceland", "israel", "italie", "italy",
	"jamaique", "jamaica", "japon", "japan", "jordanie", "jordan",
	"kazakhstan", "kenya", "kirghizistan", "kyrgyzstan", "kiribati",
	"kosovo", "koweit", "kuwait",
	"laos", "lesotho", "lettonie", "latvia", "liban", "lebanon",
	"liberia", "libye", "libya", "liechtenstein", "lituanie", "lithuania",
	"luxembourg", "macedoine", "macedonia", "madagascar",
	"malaisie", "malaysia", "malawi", "maldives", "mali", "malte", "malta",
	"maroc", "morocco", "mauritanie", "mauritania", "mauritius", "ile maurice",
	"mexique", "mexico", "moldavie", "moldova", "monaco",
	"mongolie", "mongolia", "montenegro", "mozambique",
	"myanmar", "birmanie",
	"namibie", "namibia", "nepal", "nicaragua", "niger", "nigeria",
	"norvege", "norway", "nouvelle zelande", "new zealand",
	"oman", "ouganda", "uganda", "ouzbekistan", "uzbekistan",
	"pakistan", "panama", "papouasie", "papua", "paraguay",
	"pays bas", "netherlands", "perou", "peru", "philippines",
	"pologne", "poland", "portugal",
	"qatar", "roumanie", "romania",
	"royaume uni", "united kingdom", "angleterre", "england",
	"ecosse", "scotland", "pays de galles", "wales",
	"russie", "russia", "rwanda",
	"arabie saoudite", "saudi arabia", "senegal", "serbie", "serbia",
	"singapour", "singapore", "slovaquie", "slovakia", "slovenie", "slovenia",
	"somalie", "somalia", "soudan", "sudan", "sri lanka",
	"suede", "sweden", "suisse", "switzerland", "suriname", "syrie", "syria",
	"tadjikistan", "tajikistan", "tanzanie", "tanzania",
	"tchad", "chad", "tchequie", "czech republic", "czechia",
	"thailande", "thailand", "togo", "tunisie", "tunisia",
	"turkmenistan", "turquie", "turkey",
	"ukraine", "uruguay",
	"vanuatu", "venezuela", "vietnam",
	"yemen", "zambie", "zambia", "zimbabwe",
	"emirats arabes unis", "united arab emirates",
	"afrique du sud", "south africa",
	"coree du sud", "south korea", "coree du nord", "north korea", "coree",
)

// foreignCities lists major cities outside France, in French or local form.
// "vienne" is absent (French city and department); Vienna is "wien".
var foreignCities = newTable(
	"londres", "london", "manchester", "birmingham", "liverpool", "edimbourg", "edinburgh", "dublin",
	"bruxelles", "brussels", "anvers", "antwerp", "liege", "gand", "charleroi",
	"geneve", "geneva", "lausanne", "zurich", "bale", "basel", "berne", "bern",
	"berlin", "munich", "hambourg", "hamburg", "francfort", "frankfurt", "cologne", "stuttgart", "dusseldorf",
	"madrid", "barcelone", "barcelona", "valencia", "seville", "sevilla", "bilbao", "malaga",
	"lisbonne", "lisbon", "porto", "faro",
	"rome", "roma", "milan", "milano", "turin", "torino", "naples", "napoli",
	"florence", "firenze", "venise", "venezia", "genes", "genova", "palerme", "palermo",
	"amsterdam", "rotterdam", "la haye", "den haag", "utrecht", "eindhoven",
	"wien", "salzbourg", "salzburg", "prague", "praha", "bratislava",
	"budapest", "bucarest", "bucharest", "sofia", "belgrade", "zagreb", "ljubljana",
	"varsovie", "warsaw", "cracovie", "krakow", "gdansk",
	"athenes", "athens", "thessalonique", "thessaloniki",
	"moscou", "moscow", "saint petersbourg", "kiev", "kyiv", "minsk",
	"stockholm", "goteborg", "oslo", "copenhague", "copenhagen", "helsinki", "reykjavik",
	"new york", "los angeles", "chicago", "houston", "miami", "boston",
	"san francisco", "washington", "philadelphia", "atlanta", "dallas", "seattle",
	"toronto", "montreal", "vancouver", "ottawa", "calgary",
	"mexico city", "bogota", "lima", "santiago", "buenos aires",
	"sao paulo", "rio de janeiro", "brasilia", "caracas", "quito", "montevideo",
	"casablanca", "rabat", "marrakech", "fes", "agadir", "tanger",
	"tunis", "sfax", "sousse", "alger", "oran", "constantine", "annaba",
	"dakar", "abidjan", "bamako", "ouagadougou", "conakry", "cotonou", "lome",
	"niamey", "nouakchott", "kinshasa", "brazzaville", "libreville", "yaounde", "douala",
	"le caire", "cairo", "alexandrie", "alexandria", "khartoum", "addis abeba",
	"nairobi", "kampala", "lagos", "abuja", "accra", "lusaka", "harare",
	"johannesburg", "le cap", "cape town", "pretoria", "durban", "antananarivo",
	"beyrouth", "beirut", "damas", "damascus", "amman", "bagdad", "baghdad",
	"teheran", "tehran", "jerusalem", "tel aviv", "istanbul", "ankara", "izmir",
	"dubai", "abu dhabi", "doha", "riyad", "riyadh", "djeddah", "jeddah", "mascate", "muscat",
	"karachi", "lahore", "islamabad", "bombay", "mumbai", "delhi", "new delhi",
	"calcutta", "kolkata", "madras", "chennai", "bangalore", "colombo", "dacca", "dhaka",
	"pekin", "beijing", "shanghai", "canton", "guangzhou", "shenzhen", "hong kong", "macao",
	"tokyo", "osaka", "kyoto", "yokohama", "seoul", "pyongyang", "taipei",
	"bangkok", "hanoi", "ho chi minh", "saigon", "phnom penh", "vientiane",
	"rangoun", "yangon", "manille", "manila", "jakarta", "kuala lumpur", "singapore city",
	"sydney", "melbourne", "brisbane", "perth", "canberra", "auckland", "wellington",
)

// foreignConventions are postal habits that do not occur in French addresses.
var foreignConventions = newTable(
	"po box",
	"p o box",
	"pob",
	"apt",
	"safat",
	"postfach",
	"postbus",
	"zip code",
)

// overseasNames covers DOM-TOM territories and their main communes; any of
// these marks the address as French before the weighted scoring runs.
var overseasNames = newTable(
	"guadeloupe", "martinique", "guyane", "la reunion", "reunion",
	"mayotte", "nouvelle caledonie", "caledonie",
	"polynesie francaise", "polynesie", "tahiti",
	"wallis et futuna", "futuna",
	"saint pierre et miquelon", "miquelon",
	"saint barthelemy", "terres australes",
	"fort de france", "le lamentin", "schoelcher", "le robert",
	"pointe a pitre", "les abymes", "baie mahault", "le gosier", "basse terre",
	"cayenne", "kourou", "matoury", "remire montjoly", "saint laurent du maroni",
	"le tampon", "saint andre", "saint benoit",
	"mamoudzou", "koungou", "dzaoudzi",
	"noumea", "dumbea", "mont dore", "paita",
	"papeete", "faaa", "punaauia",
)

// fantoirTypes is the street-type vocabulary, full names and the usual
// abbreviations. Worth 4 points, once.
var fantoirTypes = newTable(
	"rue", "avenue", "av", "ave", "boulevard", "bd", "bld", "blvd",
	"chemin", "che", "chem", "impasse", "imp", "place", "pl",
	"allee", "all", "route", "rte", "quai", "cours", "crs", "promenade",
	"passage", "pass", "square", "sq", "hameau", "ham",
	"lotissement", "lot", "residence", "res", "faubourg", "fbg",
	"sentier", "voie", "ruelle", "cite", "clos", "domaine",
	"esplanade", "espl", "montee", "traverse", "venelle", "villa",
	"chaussee", "rocade", "rond point", "rpt", "grande rue", "grand rue",
	"zone artisanale", "za", "zac", "zi",
)

// frenchPlaces: mainland cities and department names. Worth 1 point each.
var frenchPlaces = newTable(
	"paris", "marseille", "lyon", "toulouse", "nice", "nantes",
	"montpellier", "strasbourg", "bordeaux", "lille", "rennes", "reims",
	"saint etienne", "toulon", "le havre", "grenoble", "dijon", "angers",
	"nimes", "villeurbanne", "clermont ferrand", "le mans", "aix en provence",
	"brest", "tours", "amiens", "limoges", "annecy", "perpignan",
	"boulogne billancourt", "metz", "besancon", "orleans", "saint denis",
	"argenteuil", "rouen", "mulhouse", "montreuil", "caen", "nancy",
	"avignon", "cannes", "antibes", "la rochelle", "poitiers", "versailles",
	"pau", "calais", "bayonne", "ajaccio", "bastia", "colmar", "bourges",
	"dunkerque", "beziers", "arles", "troyes", "lorient", "niort",
	"chambery", "vannes", "auxerre", "roanne", "tarbes", "angouleme",
	"quimper", "valence", "cholet", "issy les moulineaux", "courbevoie",
	"ain", "aisne", "allier", "ardeche", "ardennes", "ariege", "aube",
	"aude", "aveyron", "calvados", "cantal", "charente", "cher", "correze",
	"corse", "cote d'or", "cotes d'armor", "creuse", "dordogne", "doubs",
	"drome", "essonne", "eure", "finistere", "gard", "gers", "gironde",
	"herault", "indre", "isere", "jura", "landes", "loire", "loiret",
	"lozere", "manche", "marne", "mayenne", "morbihan", "moselle", "nievre",
	"oise", "orne", "puy de dome", "pyrenees", "rhone", "sarthe", "savoie",
	"seine", "somme", "tarn", "var", "vaucluse", "vendee", "vienne",
	"vosges", "yonne", "yvelines",
)

// frenchCues: address vocabulary specific to French postal usage. Worth 2
// points each.
var frenchCues = newTable(
	"chez", "lieu dit", "lieudit", "bis", "ter", "quater",
	"cedex", "appartement", "appt", "batiment", "bat", "immeuble",
	"etage", "escalier", "esc", "boite postale",
	"rez de chaussee", "hotel de ville", "mairie",
)

// accentedFrench holds the characters whose presence is itself a
// French-language signal.
const accentedFrench = "àâäæçéèêëîïôöœùûüÿ"
