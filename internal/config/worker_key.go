package config

type WorkerKeyStruct struct {
	PersistSelectionsQueue string
}

var WorkerKey = &WorkerKeyStruct{
	PersistSelectionsQueue: "persist_selections_queue",
}
