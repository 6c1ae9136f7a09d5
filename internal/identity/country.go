package identity

import (
	"strings"

	"github.com/paulmach/orb"
)

// Country tags a supported locale table.
type Country string

const (
	France  Country = "France"
	USA     Country = "USA"
	Japan   Country = "Japan"
	Germany Country = "Germany"
	Brazil  Country = "Brazil"
)

// DefaultCountry backs every lookup that does not match a supported tag.
const DefaultCountry = France

// Countries lists the supported tags in display order.
var Countries = []Country{France, USA, Japan, Germany, Brazil}

// Table bundles the name, place and format data of one country.
//
// Pattern syntax: '#' any digit, '%' a digit 1-9, '@' an uppercase letter,
// "{abc}" one of the listed characters. Anything else is copied verbatim.
type Table struct {
	Country  Country
	Demonym  string
	Male     []string
	Female   []string
	Surnames []string
	Streets  []string
	Cities   []string
	Zip      string
	Phone    string
	IDNumber string
	Bounds   orb.Bound
}

var aliases = map[string]Country{
	"france":                   France,
	"fr":                       France,
	"french":                   France,
	"usa":                      USA,
	"us":                       USA,
	"united states":            USA,
	"united states of america": USA,
	"american":                 USA,
	"japan":                    Japan,
	"jp":                       Japan,
	"japanese":                 Japan,
	"germany":                  Germany,
	"de":                       Germany,
	"deutschland":              Germany,
	"german":                   Germany,
	"brazil":                   Brazil,
	"br":                       Brazil,
	"brasil":                   Brazil,
	"brazilian":                Brazil,
}

// ParseCountry resolves a free-form label to a supported country.
func ParseCountry(s string) (Country, bool) {
	c, ok := aliases[strings.ToLower(strings.TrimSpace(s))]
	return c, ok
}

// Lookup returns the table for c. It is total: unknown tags get the
// default country's table.
func Lookup(c Country) Table {
	if resolved, ok := ParseCountry(string(c)); ok {
		return tables[resolved]
	}
	return tables[DefaultCountry]
}

// bound builds an orb.Bound from latitude and longitude ranges.
func bound(latMin, latMax, lngMin, lngMax float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{lngMin, latMin},
		Max: orb.Point{lngMax, latMax},
	}
}

var tables = map[Country]Table{
	France: {
		Country: France,
		Demonym: "French",
		Male: []string{
			"Jean", "Pierre", "Michel", "Luc", "Thomas", "Nicolas", "David", "Julien", "Maxime", "Antoine",
			"Étienne", "Hugo", "Louis", "Benoit", "François", "Jacques", "Sébastien", "Marc", "Vincent", "Alexandre",
		},
		Female: []string{
			"Marie", "Sophie", "Isabelle", "Anne", "Julie", "Camille", "Claire", "Lucie", "Emma", "Sarah",
			"Laura", "Charlotte", "Manon", "Léa", "Élise", "Chloé", "Céline", "Émilie", "Audrey", "Mathilde",
		},
		Surnames: []string{
			"Martin", "Bernard", "Dubois", "Thomas", "Robert", "Richard", "Petit", "Durand", "Leroy", "Moreau",
			"Simon", "Laurent", "Lefebvre", "Michel", "Garcia", "David", "Bertrand", "Roux", "Vincent", "Fournier",
		},
		Streets: []string{
			"Rue de la Paix", "Avenue des Champs-Élysées", "Boulevard Saint-Michel", "Rue de Rivoli",
			"Avenue Montaigne", "Boulevard Haussmann", "Rue Saint-Honoré", "Avenue Victor Hugo",
			"Boulevard Voltaire", "Rue de Vaugirard",
		},
		Cities: []string{
			"Paris", "Lyon", "Marseille", "Toulouse", "Nice", "Nantes", "Strasbourg", "Montpellier",
			"Bordeaux", "Lille", "Rennes", "Reims", "Le Havre", "Toulon", "Grenoble",
		},
		Zip:      "#####",
		Phone:    "+33 {67}########",
		IDNumber: "###############",
		Bounds:   bound(42, 51, -4, 8),
	},
	USA: {
		Country: USA,
		Demonym: "American",
		Male: []string{
			"James", "John", "Robert", "Michael", "William", "David", "Richard", "Joseph", "Thomas", "Charles",
			"Christopher", "Daniel", "Matthew", "Anthony", "Mark", "Donald", "Steven", "Andrew", "Paul", "Joshua",
		},
		Female: []string{
			"Mary", "Patricia", "Jennifer", "Linda", "Elizabeth", "Barbara", "Susan", "Jessica", "Sarah", "Karen",
			"Lisa", "Nancy", "Betty", "Sandra", "Margaret", "Ashley", "Kimberly", "Emily", "Donna", "Michelle",
		},
		Surnames: []string{
			"Smith", "Johnson", "Williams", "Brown", "Jones", "Garcia", "Miller", "Davis", "Rodriguez", "Martinez",
			"Hernandez", "Lopez", "Gonzalez", "Wilson", "Anderson", "Thomas", "Taylor", "Moore", "Jackson", "Martin",
		},
		Streets: []string{
			"Main Street", "Broadway", "Park Avenue", "5th Avenue", "Washington Street",
			"Lincoln Avenue", "Jefferson Boulevard", "Oak Street", "Maple Avenue", "Sunset Boulevard",
		},
		Cities: []string{
			"New York", "Los Angeles", "Chicago", "Houston", "Phoenix", "Philadelphia", "San Antonio", "San Diego",
			"Dallas", "San Jose", "Austin", "Jacksonville", "Fort Worth", "Columbus", "Charlotte",
		},
		Zip:      "#####",
		Phone:    "+1 {23456789}##-###-####",
		IDNumber: "%##-##-####",
		Bounds:   bound(24, 49, -125, -66),
	},
	Japan: {
		Country: Japan,
		Demonym: "Japanese",
		Male: []string{
			"Haruto", "Yuto", "Sota", "Yuki", "Hayato", "Haruki", "Ryusei", "Koki", "Sora", "Sosuke",
			"Riku", "Takumi", "Ren", "Hiroto", "Yuma", "Tatsuki", "Yamato", "Minato", "Kaito", "Yusei",
		},
		Female: []string{
			"Yui", "Aoi", "Yuna", "Hina", "Riko", "Ichika", "Rin", "Akari", "Saki", "Miyu",
			"Kokona", "Mei", "Yua", "Hana", "Rikka", "Mao", "Honoka", "Momoka", "Airi", "Sakura",
		},
		Surnames: []string{
			"Sato", "Suzuki", "Takahashi", "Tanaka", "Watanabe", "Ito", "Yamamoto", "Nakamura", "Kobayashi", "Kato",
			"Yoshida", "Yamada", "Sasaki", "Yamaguchi", "Matsumoto", "Inoue", "Kimura", "Hayashi", "Shimizu", "Saito",
		},
		Streets: []string{
			"Sakura Dori", "Ginza", "Aoyama Dori", "Omotesando", "Meiji Dori",
			"Takeshita Dori", "Nakamise Dori", "Harumi Dori", "Yanaka Ginza", "Chuo Dori",
		},
		Cities: []string{
			"Tokyo", "Yokohama", "Osaka", "Nagoya", "Sapporo", "Fukuoka", "Kobe", "Kyoto",
			"Kawasaki", "Saitama", "Hiroshima", "Sendai", "Kitakyushu", "Chiba", "Sakai",
		},
		Zip:      "###-####",
		Phone:    "+81 {3456789}#-####-####",
		IDNumber: "############",
		Bounds:   bound(30, 46, 129, 146),
	},
	Germany: {
		Country: Germany,
		Demonym: "German",
		Male: []string{
			"Lukas", "Leon", "Luca", "Maximilian", "Felix", "Jonas", "Paul", "Julian", "Tim", "Elias",
			"Finn", "Philipp", "David", "Jakob", "Noah", "Niklas", "Ben", "Max", "Moritz", "Emil",
		},
		Female: []string{
			"Sophia", "Emma", "Hannah", "Mia", "Anna", "Lea", "Emilia", "Marie", "Lina", "Lena",
			"Leonie", "Sophie", "Julia", "Laura", "Johanna", "Charlotte", "Maria", "Clara", "Sarah", "Amelie",
		},
		Surnames: []string{
			"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Schulz", "Hoffmann",
			"Schäfer", "Koch", "Bauer", "Richter", "Klein", "Wolf", "Schröder", "Neumann", "Schwarz", "Zimmermann",
		},
		Streets: []string{
			"Hauptstraße", "Berliner Straße", "Bahnhofstraße", "Schillerstraße", "Goethestraße",
			"Friedrichstraße", "Königstraße", "Marktplatz", "Kaiserstraße", "Lindenstraße",
		},
		Cities: []string{
			"Berlin", "Hamburg", "Munich", "Cologne", "Frankfurt", "Stuttgart", "Düsseldorf", "Dortmund",
			"Essen", "Leipzig", "Bremen", "Dresden", "Hanover", "Nuremberg", "Duisburg",
		},
		Zip:      "#####",
		Phone:    "+49 %##-#######",
		IDNumber: "@#########",
		Bounds:   bound(47, 55, 5, 15),
	},
	Brazil: {
		Country: Brazil,
		Demonym: "Brazilian",
		Male: []string{
			"Miguel", "Arthur", "Bernardo", "Heitor", "Davi", "Lorenzo", "Théo", "Pedro", "Gabriel", "Enzo",
			"João", "Lucas", "Matheus", "Rafael", "Guilherme", "Gustavo", "Nicolas", "Samuel", "Henrique", "Felipe",
		},
		Female: []string{
			"Alice", "Sophia", "Helena", "Valentina", "Laura", "Isabella", "Manuela", "Julia", "Heloísa", "Luiza",
			"Maria", "Lorena", "Lívia", "Giovanna", "Beatriz", "Cecília", "Ana", "Clara", "Carolina", "Mariana",
		},
		Surnames: []string{
			"Silva", "Santos", "Oliveira", "Souza", "Rodrigues", "Ferreira", "Alves", "Pereira", "Lima", "Gomes",
			"Costa", "Ribeiro", "Martins", "Carvalho", "Almeida", "Lopes", "Soares", "Fernandes", "Vieira", "Barbosa",
		},
		Streets: []string{
			"Avenida Paulista", "Rua Augusta", "Avenida Atlântica", "Rua Oscar Freire", "Avenida Copacabana",
			"Rua das Laranjeiras", "Avenida Faria Lima", "Rua 25 de Março", "Avenida Brasil", "Rua da Consolação",
		},
		Cities: []string{
			"São Paulo", "Rio de Janeiro", "Brasília", "Salvador", "Fortaleza", "Belo Horizonte", "Manaus",
			"Curitiba", "Recife", "Porto Alegre", "Belém", "Goiânia", "Guarulhos", "Campinas", "São Luís",
		},
		Zip:      "#####-###",
		Phone:    "+55 %#-#####-####",
		IDNumber: "#########-##",
		Bounds:   bound(-33, 5, -74, -34),
	},
}
