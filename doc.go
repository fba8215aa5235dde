/*
	Project: Masomo Roster - the student records of the Masomo admin portal
	Target: school staff managing students from a terminal or a web page

	Layout:
	- core/student: the student record, its form, validation, ordering and the server side service
	- core/roster: the roster cache (load fallback, optimistic CRUD, search, filters, pages, rendering, xlsx)
	- services/rosterapi: HTTP client of the students REST API
	- storage/mirror, storage/session: durable snapshot of the roster and the saved API token
	- storage/database: student repositories (in memory, postgres)
	- apps/api: development backend serving the REST API
	- apps/portal: command line front end of the roster cache
*/
package masomoroster
