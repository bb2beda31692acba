// Package sink содержит реализации executor.Sink.
//
//   - LogSink     — пишет вход, результат, chunk и item в лог
//   - CSVSink     — дописывает строку в output_<task_group_id>.csv
//   - PublishSink — публикует события в RabbitMQ
//   - Multi       — вызывает несколько sinks по порядку
package sink
