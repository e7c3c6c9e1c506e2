// seed carga el catálogo de productos en el almacén PostgreSQL configurado.
//
// Uso: go run ./cmd/seed [-charset windows-1252] [ruta/catalogo.csv]
// Sin archivo carga el catálogo de demostración. El CSV va separado por ';' con cabecera
// id;label;unitOfMeasure;qtyPhysical;qtyMini;location;category (exportaciones de Excel en
// Windows-1252 o ISO-8859-1 se decodifican con -charset). Los productos existentes no se tocan.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/jhoicas/suministros-api/internal/domain/entity"
	"github.com/jhoicas/suministros-api/internal/infrastructure/postgres"
	"github.com/jhoicas/suministros-api/internal/infrastructure/seed"
	"github.com/jhoicas/suministros-api/pkg/config"
	"github.com/jhoicas/suministros-api/pkg/logger"
)

func main() {
	charset := flag.String("charset", "utf-8", "codificación del CSV (utf-8, windows-1252, iso-8859-1, iso-8859-15)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel}).Component("seed")

	products := seed.DemoProducts()
	source := "demo"
	if flag.NArg() > 0 {
		source = flag.Arg(0)
		products, err = readCatalog(source, *charset)
		if err != nil {
			log.Fatal().Err(err).Str("file", source).Msg("leer catálogo")
		}
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("crear esquema")
	}
	n, err := seed.Apply(ctx, postgres.NewProductRepository(pool), products)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar productos")
	}
	log.Info().
		Str("source", source).
		Int("read", len(products)).
		Int("created", n).
		Msg("catálogo cargado")
}

func readCatalog(path, charset string) ([]entity.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return seed.ParseCatalogCSV(f, charset)
}
