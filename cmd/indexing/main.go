package main

import (
	"flag"
	"log"

	"github.com/lintang-b-s/drive-search/pkg/di"
	"github.com/lintang-b-s/drive-search/pkg/di/config"
	"github.com/lintang-b-s/drive-search/pkg/loader"

	"go.uber.org/zap"
)

var (
	dir        = flag.String("d", "documents", "directory of documents to index")
	identifier = flag.String("id", "local", "identifier the index is stored under")
	force      = flag.Bool("force", true, "rebuild the index even when one exists")
	remove     = flag.Bool("remove", false, "remove the index of the identifier instead of building it")
)

func main() {
	flag.Parse()

	indexer, cleanup, err := di.InitializeIndexer()
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if *remove {
		if err := indexer.Store.Remove(*identifier); err != nil {
			indexer.Log.Error("remove failed", zap.String("identifier", *identifier), zap.Error(err))
			return
		}
		indexer.Log.Info("index removed", zap.String("identifier", *identifier))
		return
	}

	src := loader.NewProgressSource(loader.NewDirSource(*dir),
		config.StringSlice("LOADER_ALLOWED_EXTENSIONS"), nil)
	res, err := indexer.Loader.Load(indexer.Ctx, *identifier, src, *force)
	src.Finish()
	if err != nil {
		indexer.Log.Error("indexing failed", zap.String("dir", *dir), zap.Error(err))
		return
	}

	indexer.Log.Info("indexing done",
		zap.String("identifier", *identifier),
		zap.Bool("built", res.Built),
		zap.Int("documents", res.Documents),
		zap.Int("skipped", res.Skipped),
		zap.Float64("seconds", res.Timers.Total.Passed))
}
