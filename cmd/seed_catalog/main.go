// seed_catalog genera el script SQL que carga en PostgreSQL el catálogo exportado por el
// sistema anterior (categorías, artículos y existencias sin lotes).
//
// Uso: go run ./cmd/seed_catalog -company <uuid> [-out seed_catalog.sql] [catalogo.xml]
//
// Las existencias quedan en el agregado como stock heredado; después se ejecuta
// go run ./cmd/migrate -reconcile para convertirlas en lotes sintéticos.
package main

import (
	"encoding/xml"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogNamespace espacio de nombres para derivar IDs estables a partir de los códigos heredados.
var catalogNamespace = uuid.MustParse("6f1d3c1e-7f0b-4d8e-9a43-2c0b5e8d9a10")

type catalogo struct {
	Categorias []categoria `xml:"categoria"`
}

type categoria struct {
	Codigo       string     `xml:"codigo,attr"`
	Nombre       string     `xml:"nombre,attr"`
	TempMin      string     `xml:"temp_min,attr"`
	TempMax      string     `xml:"temp_max,attr"`
	Fotosensible string     `xml:"fotosensible,attr"`
	CadenaFrio   string     `xml:"cadena_frio,attr"`
	DiasAlerta   int        `xml:"dias_alerta,attr"`
	Articulos    []articulo `xml:"articulo"`
}

type articulo struct {
	Codigo     string `xml:"codigo,attr"`
	Nombre     string `xml:"nombre,attr"`
	Unidad     string `xml:"unidad,attr"`
	Precio     string `xml:"precio,attr"`
	Existencia int64  `xml:"existencia,attr"`
}

func main() {
	companyID := flag.String("company", "", "UUID de la empresa dueña del catálogo")
	outPath := flag.String("out", "seed_catalog.sql", "archivo SQL de salida")
	flag.Parse()

	xmlPath := "catalogo.xml"
	if flag.NArg() > 0 {
		xmlPath = flag.Arg(0)
	}
	if _, err := uuid.Parse(*companyID); err != nil {
		fmt.Fprintf(os.Stderr, "-company debe ser un UUID: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	cat, err := decodeCatalog(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	out, err := os.Create(*outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	stats, err := writeSQL(out, *companyID, cat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d categorías, %d artículos, %d con existencias heredadas\n",
		*outPath, stats.categories, stats.articles, stats.legacyStocks)
}

// decodeCatalog lee el XML exportado; el sistema anterior lo escribe en ISO-8859-1.
func decodeCatalog(r io.Reader) (*catalogo, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") || strings.EqualFold(charset, "latin1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

type seedStats struct {
	categories   int
	articles     int
	legacyStocks int
}

// stableID deriva un UUID reproducible para que el script pueda ejecutarse varias veces.
func stableID(companyID, kind, code string) string {
	return uuid.NewSHA1(catalogNamespace, []byte(companyID+"|"+kind+"|"+strings.TrimSpace(code))).String()
}

func writeSQL(w io.Writer, companyID string, c *catalogo) (seedStats, error) {
	var stats seedStats
	var b strings.Builder
	b.WriteString("-- Catálogo heredado de laboratorio\n")
	b.WriteString("-- Generado por cmd/seed_catalog; ejecutar antes de cmd/migrate -reconcile\n\n")

	for _, cat := range c.Categorias {
		if strings.TrimSpace(cat.Codigo) == "" || strings.TrimSpace(cat.Nombre) == "" {
			continue
		}
		catID := stableID(companyID, "categoria", cat.Codigo)
		tmin, err := optionalDecimal(cat.TempMin)
		if err != nil {
			return stats, fmt.Errorf("categoría %s temp_min: %w", cat.Codigo, err)
		}
		tmax, err := optionalDecimal(cat.TempMax)
		if err != nil {
			return stats, fmt.Errorf("categoría %s temp_max: %w", cat.Codigo, err)
		}
		fmt.Fprintf(&b, "INSERT INTO article_categories (id, company_id, name, storage_temp_min, storage_temp_max, light_sensitive, cold_chain_critical, expiration_alert_days)\n")
		fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', %s, %s, %t, %t, %d)\n", catID, companyID, escapeSQL(cat.Nombre),
			tmin, tmax, yes(cat.Fotosensible), yes(cat.CadenaFrio), max(cat.DiasAlerta, 0))
		b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, storage_temp_min = EXCLUDED.storage_temp_min,\n")
		b.WriteString("  storage_temp_max = EXCLUDED.storage_temp_max, light_sensitive = EXCLUDED.light_sensitive,\n")
		b.WriteString("  cold_chain_critical = EXCLUDED.cold_chain_critical, expiration_alert_days = EXCLUDED.expiration_alert_days;\n\n")
		stats.categories++

		for _, a := range cat.Articulos {
			if strings.TrimSpace(a.Codigo) == "" || strings.TrimSpace(a.Nombre) == "" {
				continue
			}
			price := decimal.Zero
			if s := strings.TrimSpace(a.Precio); s != "" {
				p, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
				if err != nil {
					return stats, fmt.Errorf("artículo %s precio: %w", a.Codigo, err)
				}
				price = p
			}
			artID := stableID(companyID, "articulo", a.Codigo)
			fmt.Fprintf(&b, "INSERT INTO articles (id, company_id, name, unit_measure, unit_price, category_id)\n")
			fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', '%s', %s, '%s')\n", artID, companyID,
				escapeSQL(a.Nombre), escapeSQL(a.Unidad), price.String(), catID)
			b.WriteString("ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, unit_measure = EXCLUDED.unit_measure, unit_price = EXCLUDED.unit_price;\n")
			stats.articles++

			// Existencia sin lotes: solo el agregado, nunca se sobrescribe uno existente.
			if a.Existencia > 0 {
				value := price.Mul(decimal.NewFromInt(a.Existencia))
				fmt.Fprintf(&b, "INSERT INTO stocks (id, company_id, article_id, quantity, value)\n")
				fmt.Fprintf(&b, "VALUES ('%s', '%s', '%s', %d, %s)\n", stableID(companyID, "stock", a.Codigo),
					companyID, artID, a.Existencia, value.String())
				b.WriteString("ON CONFLICT (company_id, article_id) DO NOTHING;\n")
				stats.legacyStocks++
			}
			b.WriteString("\n")
		}
	}
	_, err := io.WriteString(w, b.String())
	return stats, err
}

func optionalDecimal(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NULL", nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

func yes(s string) bool {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "S", "SI", "SÍ", "1", "TRUE":
		return true
	}
	return false
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "'", "''")
}
