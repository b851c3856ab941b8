package main

// General API documentation for swaggo. Run `make swagger-gen` to regenerate.
//
// @title           textpipe API
// @version         1.0
// @description     HTTP API for locally hosted text-generation pipelines.
//
// @contact.name   textpipe maintainers
// @contact.url    https://github.com/your-org/textpipe
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
