package config

type WorkerKeyStruct struct {
	CatalogRefreshQueue string
}

var WorkerKey = &WorkerKeyStruct{
	CatalogRefreshQueue: "catalog_refresh_queue",
}
